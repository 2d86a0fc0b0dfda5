package notify

// Mailer delivers transactional email. Implementations return an error
// when delivery fails; callers decide whether that is fatal.
type Mailer interface {
	SendPasswordResetEmail(toEmail, toName, resetURL string) error
}

// BookingDetails is what an approval notice carries.
type BookingDetails struct {
	Date             string
	Time             string
	ConsultationType string
}

// SMSSender delivers short text notices to a phone number.
type SMSSender interface {
	SendBookingApproval(phone string, details BookingDetails) error
}
