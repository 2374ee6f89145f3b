package mail

import (
	"fmt"
	"time"

	"github.com/Maniok19/Wikitricks/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends account emails. Handlers depend on this interface so tests
// can capture outgoing mail instead of talking to an SMTP server.
type Mailer interface {
	SendVerificationEmail(to, token string) error
	SendPasswordResetEmail(to, token string) error
}

// SMTPMailer delivers through a plain SMTP relay (Gmail in production).
type SMTPMailer struct {
	cfg         config.MailConfig
	frontendURL string
}

func NewSMTPMailer(cfg config.MailConfig, frontendURL string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, frontendURL: frontendURL}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	// an unresponsive relay must not stall the request forever
	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		return fmt.Errorf("smtp send to %s timed out", to)
	}
}

func (m *SMTPMailer) SendVerificationEmail(to, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email/%s", m.frontendURL, token)
	body := fmt.Sprintf(`To verify your WikiTricks account, click the link below:

%s

This link will expire in 24 hours.
`, verificationURL)
	return m.send(to, "Verify your WikiTricks account", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", m.frontendURL, token)
	body := fmt.Sprintf(`To reset your WikiTricks password, click the link below:

%s

This link will expire in 1 hour.

If you didn't request this password reset, please ignore this email.
`, resetURL)
	return m.send(to, "WikiTricks Password Reset", body)
}
