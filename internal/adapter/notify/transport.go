package notify

import (
	"context"
	"log/slog"

	"github.com/sdars/hazard-engine/internal/alert"
)

// smsBodyLimit keeps SMS payloads inside a single segment.
const smsBodyLimit = 160

// SystemPublisher pushes an alert event onto the system channel, typically a
// message broker consumed by dashboards and sibling services.
type SystemPublisher interface {
	PublishAlert(ctx context.Context, a *alert.Alert) error
}

// Transport implements the delivery port for all four channels. SYSTEM goes
// through the publisher when one is wired, otherwise to the structured log.
// SMS and PUSH are log-backed single-recipient deliveries with an
// abbreviated body.
type Transport struct {
	email     *EmailSender
	publisher SystemPublisher
	phone     string
	logger    *slog.Logger
}

// NewTransport assembles the channel transport. publisher may be nil (SYSTEM
// falls back to the log); phone may be empty (SMS becomes a logged no-op).
func NewTransport(email *EmailSender, publisher SystemPublisher, phone string, logger *slog.Logger) *Transport {
	return &Transport{
		email:     email,
		publisher: publisher,
		phone:     phone,
		logger:    logger,
	}
}

func (t *Transport) SendSystem(ctx context.Context, a *alert.Alert) error {
	if t.publisher != nil {
		return t.publisher.PublishAlert(ctx, a)
	}
	t.logger.Warn("system alert",
		"alert_id", a.ID,
		"hazard", a.Hazard,
		"severity", a.Severity,
		"title", a.Title,
		"lat", a.Location.Lat,
		"lon", a.Location.Lon,
	)
	return nil
}

func (t *Transport) SendEmail(ctx context.Context, a *alert.Alert, recipient string) error {
	return t.email.Send(ctx, a, recipient)
}

func (t *Transport) SendSMS(_ context.Context, a *alert.Alert) error {
	if t.phone == "" {
		t.logger.Info("no alert phone configured, skipping sms", "alert_id", a.ID)
		return nil
	}
	t.logger.Info("sms alert", "alert_id", a.ID, "to", t.phone, "body", abbreviate(a))
	return nil
}

func (t *Transport) SendPush(_ context.Context, a *alert.Alert) error {
	t.logger.Info("push alert", "alert_id", a.ID, "title", a.Title, "body", abbreviate(a))
	return nil
}

// abbreviate squeezes the alert into a short single-segment body.
func abbreviate(a *alert.Alert) string {
	body := a.Title
	if len(body) > smsBodyLimit {
		body = body[:smsBodyLimit-3] + "..."
	}
	return body
}
