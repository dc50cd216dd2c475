// Package mailer dispatches transactional email, currently only the email
// verification one-time code.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer is the notification collaborator consumed by the auth services.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

// SendGridMailer delivers mail through the SendGrid API.
type SendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGrid(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (m *SendGridMailer) SendOTP(ctx context.Context, to, name, code string) error {
	from := mail.NewEmail(m.fromName, m.from)
	subject := "Verify your email"
	recipient := mail.NewEmail(name, to)
	plain := fmt.Sprintf("Hi %s, your verification code is %s. It expires in 10 minutes.", name, code)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p>", name, code)

	message := mail.NewSingleEmail(from, subject, recipient, plain, html)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("email provider rejected message: status %d", resp.StatusCode)
	}
	return nil
}

// LogMailer writes codes to the log instead of sending mail. Used when no
// API key is configured (local development).
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, to, _, code string) error {
	slog.Info("otp email (log mailer)", "to", to, "code", code)
	return nil
}
