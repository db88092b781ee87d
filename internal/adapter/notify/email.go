package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/config"
)

// mailDialer is the slice of gomail.Dialer the sender needs, so tests can
// swap in a recorder.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers alert emails over SMTP. With no host configured it
// degrades to a logged no-op so development environments never need real
// credentials.
type EmailSender struct {
	dialer mailDialer
	from   string
	logger *slog.Logger
}

// NewEmailSender builds an SMTP sender from config. An empty SMTP_HOST
// disables delivery.
func NewEmailSender(cfg *config.Config, logger *slog.Logger) *EmailSender {
	s := &EmailSender{from: cfg.SMTPFrom, logger: logger}
	if cfg.SMTPHost != "" {
		s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	return s
}

// Send delivers the alert to a single recipient. Unconfigured SMTP logs and
// returns nil.
func (s *EmailSender) Send(_ context.Context, a *alert.Alert, recipient string) error {
	if s.dialer == nil {
		s.logger.Info("smtp not configured, skipping email", "alert_id", a.ID, "recipient", recipient)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", a.Title)
	m.SetBody("text/plain", a.Message)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", recipient, err)
	}
	s.logger.Debug("email sent", "alert_id", a.ID, "recipient", recipient)
	return nil
}
