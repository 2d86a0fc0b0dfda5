package notify

import (
	"fmt"

	"github.com/agriclinic/agri-clinic-hub/pkg/logger"
)

// DevMailer prints emails to the log instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendPasswordResetEmail(toEmail, toName, resetURL string) error {
	logger.Info("[DEV MAIL] Password Reset Email",
		"to", toEmail,
		"name", toName,
		"reset_url", resetURL,
	)
	return nil
}

// DevSMS logs SMS messages instead of dispatching them, the same shape a
// real gateway integration would take.
type DevSMS struct{}

func NewDevSMS() *DevSMS {
	return &DevSMS{}
}

func (d *DevSMS) SendBookingApproval(phone string, details BookingDetails) error {
	message := fmt.Sprintf("Your booking request has been approved. Date: %s, Time: %s. Type: %s",
		details.Date, details.Time, details.ConsultationType)
	logger.Info("[DEV SMS] Booking approval",
		"to", phone,
		"message", message,
	)
	return nil
}
