package service

import (
	"context"
	"fmt"
	"time"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/metrics"
	"github.com/agriclinic/agri-clinic-hub/internal/notify"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/postgres"
	"github.com/agriclinic/agri-clinic-hub/pkg/events"
	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

type BookingService interface {
	CreateBooking(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, error)
	ListMine(ctx context.Context, farmerID int64, limit, offset int) ([]domain.BookingView, error)
	ListAssigned(ctx context.Context, officerID int64, limit, offset int) ([]domain.BookingView, error)
	SetStatus(ctx context.Context, officerID, bookingID int64, status string) (*domain.Booking, error)
}

type bookingService struct {
	bookingRepo postgres.BookingRepository
	userRepo    postgres.UserRepository
	sms         notify.SMSSender
	publisher   events.Publisher
	metrics     metrics.Collector
}

func NewBookingService(
	bookingRepo postgres.BookingRepository,
	userRepo postgres.UserRepository,
	sms notify.SMSSender,
	publisher events.Publisher,
	collector metrics.Collector,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		sms:         sms,
		publisher:   publisher,
		metrics:     collector,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	officer, err := s.userRepo.FindByID(ctx, req.OfficerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up officer: %w", err)
	}
	if officer == nil || officer.Role != domain.RoleOfficer {
		return nil, domain.Validationf("invalid officer selected")
	}
	if !officer.IsVerified {
		return nil, domain.Validationf("selected officer is not verified")
	}

	booking, err := s.bookingRepo.Create(ctx, farmerID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.RecordBookingCreated()

	if err := s.publisher.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:        booking.ID,
		FarmerID:         booking.FarmerID,
		OfficerID:        booking.OfficerID,
		Date:             booking.Date,
		Time:             booking.Time,
		ConsultationType: string(booking.ConsultationType),
		CreatedAt:        booking.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) ListMine(ctx context.Context, farmerID int64, limit, offset int) ([]domain.BookingView, error) {
	return s.bookingRepo.ListByFarmer(ctx, farmerID, limit, offset)
}

func (s *bookingService) ListAssigned(ctx context.Context, officerID int64, limit, offset int) ([]domain.BookingView, error) {
	return s.bookingRepo.ListByOfficer(ctx, officerID, limit, offset)
}

// SetStatus moves a booking along the lifecycle on behalf of its assigned
// officer. Checks run in a fixed order so the caller always gets the most
// specific failure: unknown booking, then ownership, then the transition
// itself.
func (s *bookingService) SetStatus(ctx context.Context, officerID, bookingID int64, status string) (*domain.Booking, error) {
	next, ok := domain.ParseBookingStatus(status)
	if !ok {
		return nil, domain.Validationf("status must be one of pending, approved, rejected, completed")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking", domain.ErrNotFound)
	}
	if booking.OfficerID != officerID {
		return nil, domain.ErrForbidden
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, booking.Status, next)
	}

	updated, err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if !updated {
		// Lost a race: someone changed the status between our read and the
		// conditional write. Report against the current state.
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload booking: %w", err)
		}
		if current == nil {
			return nil, fmt.Errorf("%w: booking", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Status, next)
	}

	previous := booking.Status
	booking.Status = next
	// The CAS write stamped updated_at server-side; refresh the in-memory
	// copy so the response and the event carry the transition time, not
	// the pre-transition one.
	booking.UpdatedAt = time.Now()
	s.metrics.RecordBookingTransition(string(previous), string(next))

	if next == domain.BookingApproved {
		s.notifyApproval(ctx, booking)
	}

	s.publishStatusChange(ctx, booking, previous, next)

	return booking, nil
}

// notifyApproval texts the farmer. Delivery failure never rolls back the
// status change.
func (s *bookingService) notifyApproval(ctx context.Context, booking *domain.Booking) {
	farmer, err := s.userRepo.FindByID(ctx, booking.FarmerID)
	if err != nil || farmer == nil {
		logger.WarnContext(ctx, "Failed to load farmer for approval SMS", "error", err, "booking_id", booking.ID)
		s.metrics.RecordNotificationFailure("booking_approval_sms")
		return
	}

	err = s.sms.SendBookingApproval(farmer.Phone, notify.BookingDetails{
		Date:             booking.Date,
		Time:             booking.Time,
		ConsultationType: string(booking.ConsultationType),
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to send approval SMS", "error", err, "booking_id", booking.ID)
		s.metrics.RecordNotificationFailure("booking_approval_sms")
	}
}

func (s *bookingService) publishStatusChange(ctx context.Context, booking *domain.Booking, previous, next domain.BookingStatus) {
	subject := map[domain.BookingStatus]string{
		domain.BookingApproved:  events.BookingApproved,
		domain.BookingRejected:  events.BookingRejected,
		domain.BookingCompleted: events.BookingCompleted,
	}[next]
	if subject == "" {
		return
	}

	err := s.publisher.Publish(ctx, subject, events.BookingStatusChangedEvent{
		BookingID: booking.ID,
		OfficerID: booking.OfficerID,
		Previous:  string(previous),
		Next:      string(next),
		ChangedAt: booking.UpdatedAt,
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to publish booking status event", "error", err, "booking_id", booking.ID)
	}
}
