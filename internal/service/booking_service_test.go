package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/metrics"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
	"github.com/agriclinic/agri-clinic-hub/pkg/events"
)

// ---------- Mocks ----------

type mockBookingRepo struct {
	bookings map[int64]*domain.Booking
	nextID   int64

	// interceptUpdate, when set, runs before the status swap and lets a
	// test simulate a concurrent writer.
	interceptUpdate func()
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[int64]*domain.Booking), nextID: 1}
}

func (m *mockBookingRepo) addBooking(b *domain.Booking) *domain.Booking {
	b.ID = m.nextID
	m.nextID++
	m.bookings[b.ID] = b
	return b
}

func (m *mockBookingRepo) Create(_ context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	now := time.Now()
	return m.addBooking(&domain.Booking{
		FarmerID:         farmerID,
		OfficerID:        req.OfficerID,
		Date:             req.Date,
		Time:             req.Time,
		ConsultationType: domain.ConsultationType(req.ConsultationType),
		Status:           domain.BookingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}), nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) ListByFarmer(_ context.Context, farmerID int64, _, _ int) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for _, b := range m.bookings {
		if b.FarmerID == farmerID {
			out = append(out, domain.BookingView{Booking: *b})
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByOfficer(_ context.Context, officerID int64, _, _ int) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for _, b := range m.bookings {
		if b.OfficerID == officerID {
			out = append(out, domain.BookingView{Booking: *b})
		}
	}
	return out, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	if m.interceptUpdate != nil {
		m.interceptUpdate()
		m.interceptUpdate = nil
	}
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return true, nil
}

// ---------- Fixtures ----------

func seedOfficer(repo *mockUserRepo, verified bool) *domain.User {
	return repo.addUser(&domain.User{
		Role: domain.RoleOfficer, Email: "omar@clinic.com", Name: "Omar",
		Phone: "0711222333", IsVerified: verified,
	})
}

func seedFarmer(repo *mockUserRepo) *domain.User {
	return repo.addUser(&domain.User{
		Role: domain.RoleFarmer, Email: "asha@farm.com", Name: "Asha",
		Phone: "0700111222",
	})
}

func validRequest(officerID int64) *domain.CreateBookingRequest {
	return &domain.CreateBookingRequest{
		OfficerID:        officerID,
		Date:             "2026-09-15",
		Time:             "10:30",
		ConsultationType: "online",
	}
}

// ---------- CreateBooking ----------

func TestCreateBooking(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	pub := &mockPublisher{}
	svc := service.NewBookingService(bookings, users, &mockSMS{}, pub, metrics.Noop{})

	b, err := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if b.Status != domain.BookingPending {
		t.Errorf("new booking should be pending, got %s", b.Status)
	}
	if len(pub.subjects) != 1 || pub.subjects[0] != events.BookingCreated {
		t.Errorf("expected booking.created event, got %v", pub.subjects)
	}
}

func TestCreateBookingOfficerChecks(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	unverified := seedOfficer(users, false)
	svc := service.NewBookingService(newMockBookingRepo(), users, &mockSMS{}, &mockPublisher{}, metrics.Noop{})

	// Unknown officer id.
	_, err := svc.CreateBooking(context.Background(), farmer.ID, validRequest(999))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown officer: want ErrValidation, got %v", err)
	}

	// A farmer is not a valid officer.
	_, err = svc.CreateBooking(context.Background(), farmer.ID, validRequest(farmer.ID))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("non-officer target: want ErrValidation, got %v", err)
	}

	// Unverified officer cannot be booked.
	_, err = svc.CreateBooking(context.Background(), farmer.ID, validRequest(unverified.ID))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unverified officer: want ErrValidation, got %v", err)
	}
}

func TestCreateBookingBadDate(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	svc := service.NewBookingService(newMockBookingRepo(), users, &mockSMS{}, &mockPublisher{}, metrics.Noop{})

	req := validRequest(officer.ID)
	req.Date = "15/09/2026"
	_, err := svc.CreateBooking(context.Background(), farmer.ID, req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation for bad date, got %v", err)
	}
}

// ---------- SetStatus ----------

func TestSetStatusApprovalSendsSMS(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	sms := &mockSMS{}
	pub := &mockPublisher{}
	svc := service.NewBookingService(bookings, users, sms, pub, metrics.Noop{})

	b, err := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	updated, err := svc.SetStatus(context.Background(), officer.ID, b.ID, "approved")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != domain.BookingApproved {
		t.Errorf("status not approved: %s", updated.Status)
	}
	if sms.calls != 1 || sms.lastPhone != farmer.Phone {
		t.Errorf("expected one SMS to %s, got %d to %s", farmer.Phone, sms.calls, sms.lastPhone)
	}
	if sms.lastDetails.Date != b.Date || sms.lastDetails.Time != b.Time {
		t.Errorf("SMS carries wrong details: %+v", sms.lastDetails)
	}
}

func TestSetStatusSMSFailureDoesNotRollBack(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	sms := &mockSMS{sendErr: errors.New("gateway down")}
	svc := service.NewBookingService(bookings, users, sms, &mockPublisher{}, metrics.Noop{})

	b, _ := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))
	updated, err := svc.SetStatus(context.Background(), officer.ID, b.ID, "approved")
	if err != nil {
		t.Fatalf("approve should succeed despite SMS failure: %v", err)
	}
	if updated.Status != domain.BookingApproved {
		t.Errorf("status not approved: %s", updated.Status)
	}
}

func TestSetStatusRejectionSendsNoSMS(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	sms := &mockSMS{}
	svc := service.NewBookingService(newMockBookingRepo(), users, sms, &mockPublisher{}, metrics.Noop{})

	b, _ := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))
	if _, err := svc.SetStatus(context.Background(), officer.ID, b.ID, "rejected"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if sms.calls != 0 {
		t.Errorf("rejection must not text the farmer, got %d calls", sms.calls)
	}
}

func TestSetStatusCheckOrder(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	other := users.addUser(&domain.User{
		Role: domain.RoleOfficer, Email: "nia@clinic.com", Name: "Nia", IsVerified: true,
	})
	bookings := newMockBookingRepo()
	svc := service.NewBookingService(bookings, users, &mockSMS{}, &mockPublisher{}, metrics.Noop{})

	b, _ := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))

	// Unknown booking beats everything.
	_, err := svc.SetStatus(context.Background(), officer.ID, 999, "approved")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown booking: want ErrNotFound, got %v", err)
	}

	// Wrong officer beats invalid transition.
	_, err = svc.SetStatus(context.Background(), other.ID, b.ID, "pending")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("wrong officer: want ErrForbidden, got %v", err)
	}

	// Unknown status value is a validation error.
	_, err = svc.SetStatus(context.Background(), officer.ID, b.ID, "cancelled")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad status: want ErrValidation, got %v", err)
	}
}

func TestSetStatusTerminalStates(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	svc := service.NewBookingService(bookings, users, &mockSMS{}, &mockPublisher{}, metrics.Noop{})

	b, _ := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))
	if _, err := svc.SetStatus(context.Background(), officer.ID, b.ID, "rejected"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	for _, next := range []string{"pending", "approved", "completed"} {
		_, err := svc.SetStatus(context.Background(), officer.ID, b.ID, next)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("rejected -> %s: want ErrInvalidTransition, got %v", next, err)
		}
	}
}

func TestSetStatusLostRace(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	svc := service.NewBookingService(bookings, users, &mockSMS{}, &mockPublisher{}, metrics.Noop{})

	b, _ := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))

	// A concurrent writer completes the booking between our read and the
	// conditional update.
	bookings.interceptUpdate = func() {
		bookings.bookings[b.ID].Status = domain.BookingCompleted
	}

	_, err := svc.SetStatus(context.Background(), officer.ID, b.ID, "approved")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("lost race: want ErrInvalidTransition, got %v", err)
	}
	if bookings.bookings[b.ID].Status != domain.BookingCompleted {
		t.Errorf("loser must not overwrite the winner, got %s", bookings.bookings[b.ID].Status)
	}
}

func TestSetStatusEventCarriesTransitionTime(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	pub := &mockPublisher{}
	svc := service.NewBookingService(bookings, users, &mockSMS{}, pub, metrics.Noop{})

	b, err := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID))
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// Age the stored record so a stale timestamp is detectable.
	past := time.Now().Add(-time.Hour)
	bookings.bookings[b.ID].CreatedAt = past
	bookings.bookings[b.ID].UpdatedAt = past

	updated, err := svc.SetStatus(context.Background(), officer.ID, b.ID, "approved")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !updated.UpdatedAt.After(past) {
		t.Errorf("returned booking keeps the pre-transition timestamp: %v", updated.UpdatedAt)
	}

	var evt events.BookingStatusChangedEvent
	var found bool
	for _, p := range pub.payloads {
		if e, ok := p.(events.BookingStatusChangedEvent); ok {
			evt = e
			found = true
		}
	}
	if !found {
		t.Fatal("no status change event published")
	}
	if !evt.ChangedAt.After(past) {
		t.Errorf("event carries the pre-transition timestamp: %v", evt.ChangedAt)
	}
	if evt.Previous != "pending" || evt.Next != "approved" {
		t.Errorf("unexpected edge in event: %s -> %s", evt.Previous, evt.Next)
	}
}

// ---------- Listing ----------

func TestListMineAndAssigned(t *testing.T) {
	users := newMockUserRepo()
	farmer := seedFarmer(users)
	officer := seedOfficer(users, true)
	bookings := newMockBookingRepo()
	svc := service.NewBookingService(bookings, users, &mockSMS{}, &mockPublisher{}, metrics.Noop{})

	if _, err := svc.CreateBooking(context.Background(), farmer.ID, validRequest(officer.ID)); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	mine, err := svc.ListMine(context.Background(), farmer.ID, 20, 0)
	if err != nil || len(mine) != 1 {
		t.Errorf("farmer list: want 1 booking, got %d (err=%v)", len(mine), err)
	}
	assigned, err := svc.ListAssigned(context.Background(), officer.ID, 20, 0)
	if err != nil || len(assigned) != 1 {
		t.Errorf("officer list: want 1 booking, got %d (err=%v)", len(assigned), err)
	}
	none, err := svc.ListMine(context.Background(), officer.ID, 20, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("officer as farmer: want 0 bookings, got %d (err=%v)", len(none), err)
	}
}
