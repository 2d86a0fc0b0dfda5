package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingApproved, BookingRejected, BookingCompleted:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingRejected || s == BookingCompleted
}

// CanTransitionTo encodes the booking state machine: pending may be
// approved or rejected, any non-terminal booking may be completed, and an
// approved booking may still be rejected. Nothing leaves a terminal state
// and nothing moves back to pending.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingApproved || next == BookingRejected || next == BookingCompleted
	case BookingApproved:
		return next == BookingRejected || next == BookingCompleted
	default:
		return false
	}
}

type ConsultationType string

const (
	ConsultationOnline   ConsultationType = "online"
	ConsultationPhysical ConsultationType = "physical"
)

func ParseConsultationType(s string) (ConsultationType, bool) {
	switch ConsultationType(s) {
	case ConsultationOnline, ConsultationPhysical:
		return ConsultationType(s), true
	default:
		return "", false
	}
}

type Booking struct {
	ID               int64            `json:"id"`
	FarmerID         int64            `json:"farmer_id"`
	OfficerID        int64            `json:"officer_id"`
	Date             string           `json:"date"`
	Time             string           `json:"time"`
	ConsultationType ConsultationType `json:"consultation_type"`
	Status           BookingStatus    `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BookingView is a booking joined with the names and contacts of both
// parties, the shape list endpoints return.
type BookingView struct {
	Booking
	FarmerName   string `json:"farmer_name"`
	FarmerEmail  string `json:"farmer_email"`
	FarmerPhone  string `json:"farmer_phone"`
	OfficerName  string `json:"officer_name"`
	OfficerEmail string `json:"officer_email"`
	OfficerPhone string `json:"officer_phone"`
}

type CreateBookingRequest struct {
	OfficerID        int64  `json:"officer_id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	ConsultationType string `json:"consultation_type"`
}

func (r *CreateBookingRequest) Validate() error {
	if r.OfficerID == 0 {
		return Validationf("officer_id is required")
	}
	if r.Date == "" {
		return Validationf("date is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return Validationf("date must be in YYYY-MM-DD format")
	}
	if r.Time == "" {
		return Validationf("time is required")
	}
	if r.ConsultationType == "" {
		return Validationf("consultation_type is required")
	}
	if _, ok := ParseConsultationType(r.ConsultationType); !ok {
		return Validationf("consultation_type must be online or physical")
	}
	return nil
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}
