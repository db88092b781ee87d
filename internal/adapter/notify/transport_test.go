package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/config"
	"github.com/sdars/hazard-engine/internal/domain"
)

type recordingDialer struct {
	messages []*gomail.Message
	err      error
}

func (r *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, m...)
	return nil
}

func testAlert() *alert.Alert {
	return &alert.Alert{
		ID:       "ALERT-20250615-103000-FIR-1a2b3c4d",
		Hazard:   domain.HazardFire,
		Severity: domain.RiskHigh,
		Title:    "HIGH FIRE risk at Test Ridge",
		Message:  "FIRE risk detected at Test Ridge (confidence 80%).",
	}
}

func TestEmailSenderSend(t *testing.T) {
	dialer := &recordingDialer{}
	s := &EmailSender{dialer: dialer, from: "alerts@example.org", logger: slog.Default()}

	err := s.Send(context.Background(), testAlert(), "ops@example.org")

	require.NoError(t, err)
	require.Len(t, dialer.messages, 1)
	m := dialer.messages[0]
	assert.Equal(t, []string{"alerts@example.org"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ops@example.org"}, m.GetHeader("To"))
	assert.Equal(t, []string{"HIGH FIRE risk at Test Ridge"}, m.GetHeader("Subject"))
}

func TestEmailSenderWrapsDialError(t *testing.T) {
	s := &EmailSender{dialer: &recordingDialer{err: errors.New("connection refused")}, from: "a@b.c", logger: slog.Default()}

	err := s.Send(context.Background(), testAlert(), "ops@example.org")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ops@example.org")
}

func TestEmailSenderUnconfiguredIsNoOp(t *testing.T) {
	s := NewEmailSender(&config.Config{SMTPFrom: "a@b.c"}, slog.Default())

	assert.NoError(t, s.Send(context.Background(), testAlert(), "ops@example.org"))
}

type recordingPublisher struct {
	published []*alert.Alert
	err       error
}

func (r *recordingPublisher) PublishAlert(_ context.Context, a *alert.Alert) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, a)
	return nil
}

func TestTransportSystemUsesPublisher(t *testing.T) {
	pub := &recordingPublisher{}
	tr := NewTransport(nil, pub, "", slog.Default())

	require.NoError(t, tr.SendSystem(context.Background(), testAlert()))
	assert.Len(t, pub.published, 1)
}

func TestTransportSystemPublisherError(t *testing.T) {
	tr := NewTransport(nil, &recordingPublisher{err: errors.New("broker down")}, "", slog.Default())

	assert.Error(t, tr.SendSystem(context.Background(), testAlert()))
}

func TestTransportSystemFallsBackToLog(t *testing.T) {
	tr := NewTransport(nil, nil, "", slog.Default())

	assert.NoError(t, tr.SendSystem(context.Background(), testAlert()))
}

func TestTransportSMSAndPush(t *testing.T) {
	tr := NewTransport(nil, nil, "+15555550100", slog.Default())

	assert.NoError(t, tr.SendSMS(context.Background(), testAlert()))
	assert.NoError(t, tr.SendPush(context.Background(), testAlert()))

	// No phone configured: still a non-error no-op.
	bare := NewTransport(nil, nil, "", slog.Default())
	assert.NoError(t, bare.SendSMS(context.Background(), testAlert()))
}

func TestAbbreviate(t *testing.T) {
	a := testAlert()
	assert.Equal(t, a.Title, abbreviate(a))

	a.Title = strings.Repeat("x", 300)
	body := abbreviate(a)
	assert.Len(t, body, smsBodyLimit)
	assert.True(t, strings.HasSuffix(body, "..."))
}
