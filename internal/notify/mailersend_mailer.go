package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendPasswordResetEmail(toEmail, toName, resetURL string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Agri-Clinic Hub - Password Reset"
	html := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>Hi %s,</p>
		<p>You requested a password reset for your Agri-Clinic Hub account.</p>
		<p>Click the link below to reset your password:</p>
		<p><a href="%s" target="_blank">%s</a></p>
		<p>This link will expire in 30 minutes.</p>
		<p>If you did not request this, please ignore this email.</p>
	`, toName, resetURL, resetURL)

	text := fmt.Sprintf("You requested a password reset for your Agri-Clinic Hub account.\n\nReset your password here: %s\n\nThis link will expire in 30 minutes.", resetURL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
