package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/observability"
)

type recordingTransport struct {
	mu        sync.Mutex
	system    int
	sms       int
	push      int
	emails    []string
	failEmail map[string]error
	systemErr error
}

func (r *recordingTransport) SendSystem(context.Context, *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.system++
	return r.systemErr
}

func (r *recordingTransport) SendEmail(_ context.Context, _ *alert.Alert, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, recipient)
	return r.failEmail[recipient]
}

func (r *recordingTransport) SendSMS(context.Context, *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sms++
	return nil
}

func (r *recordingTransport) SendPush(context.Context, *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.push++
	return nil
}

func (r *recordingTransport) sentEmails() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.emails...)
}

type stubSubscriberStore struct {
	byZone map[string][]string
	err    error
}

func (s stubSubscriberStore) SubscribersForZone(_ context.Context, zone string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byZone[zone], nil
}

func emailAlert(channels []alert.Channel) *alert.Alert {
	return &alert.Alert{
		ID:       "ALERT-20250615-103000-FIR-1a2b3c4d",
		Severity: domain.RiskHigh,
		Channels: channels,
		MatchedZones: []domain.Zone{
			{Name: "harbor", RecipientEmails: []string{"harbor-ops@example.org", "not-an-address"}},
			{Name: "ridge", RecipientEmails: []string{"ridge-ops@example.org"}},
		},
		AdditionalRecipients: []string{"extra@example.org", "harbor-ops@example.org"},
	}
}

func newTestDispatcher(t *recordingTransport, subs domain.SubscriberStore, defaultEmail string) *Dispatcher {
	return NewDispatcher(t, subs, defaultEmail, slog.Default(), observability.NewMetricsForTesting())
}

func TestDispatchEmailRecipientResolution(t *testing.T) {
	transport := &recordingTransport{}
	subs := stubSubscriberStore{byZone: map[string][]string{
		"harbor": {"sub1@example.org", "ridge-ops@example.org"},
		"ridge":  {"sub2@example.org"},
	}}
	d := newTestDispatcher(transport, subs, "operator@example.org")

	report := d.Dispatch(context.Background(), emailAlert([]alert.Channel{alert.ChannelEmail}))

	// Operator first, then zone recipient emails, then subscribers, then
	// additional recipients, with duplicates and malformed addresses dropped.
	assert.Equal(t, []string{
		"operator@example.org",
		"harbor-ops@example.org",
		"ridge-ops@example.org",
		"sub1@example.org",
		"sub2@example.org",
		"extra@example.org",
	}, transport.sentEmails())
	assert.Equal(t, 6, report.Succeeded())
	assert.Zero(t, report.Failed())
}

func TestDispatchEmailNoRecipientsIsNoOp(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, nil, "")

	a := &alert.Alert{ID: "a1", Channels: []alert.Channel{alert.ChannelEmail}}
	report := d.Dispatch(context.Background(), a)

	assert.Empty(t, transport.sentEmails())
	assert.Empty(t, report.Results)
}

func TestDispatchPerRecipientIsolation(t *testing.T) {
	transport := &recordingTransport{failEmail: map[string]error{
		"harbor-ops@example.org": errors.New("mailbox full"),
	}}
	d := newTestDispatcher(transport, nil, "operator@example.org")

	report := d.Dispatch(context.Background(), emailAlert([]alert.Channel{alert.ChannelEmail}))

	// The failing recipient does not stop later ones.
	assert.Equal(t, []string{
		"operator@example.org",
		"harbor-ops@example.org",
		"ridge-ops@example.org",
		"extra@example.org",
	}, transport.sentEmails())
	assert.Equal(t, 3, report.Succeeded())
	assert.Equal(t, 1, report.Failed())

	var failed []string
	for _, res := range report.Results {
		if res.Err != nil {
			failed = append(failed, res.Recipient)
		}
	}
	assert.Equal(t, []string{"harbor-ops@example.org"}, failed)
}

func TestDispatchAllChannels(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, nil, "operator@example.org")

	a := emailAlert([]alert.Channel{alert.ChannelSystem, alert.ChannelEmail, alert.ChannelSMS, alert.ChannelPush})
	report := d.Dispatch(context.Background(), a)

	assert.Equal(t, 1, transport.system)
	assert.Equal(t, 1, transport.sms)
	assert.Equal(t, 1, transport.push)
	assert.NotEmpty(t, transport.sentEmails())
	assert.Zero(t, report.Failed())
}

func TestDispatchChannelFailureIsolated(t *testing.T) {
	transport := &recordingTransport{systemErr: errors.New("broker unavailable")}
	d := newTestDispatcher(transport, nil, "operator@example.org")

	a := emailAlert([]alert.Channel{alert.ChannelSystem, alert.ChannelSMS})
	report := d.Dispatch(context.Background(), a)

	assert.Equal(t, 1, transport.sms)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Succeeded())
}

func TestDispatchSubscriberStoreFailureDegrades(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, stubSubscriberStore{err: errors.New("db offline")}, "operator@example.org")

	report := d.Dispatch(context.Background(), emailAlert([]alert.Channel{alert.ChannelEmail}))

	assert.Equal(t, []string{
		"operator@example.org",
		"harbor-ops@example.org",
		"ridge-ops@example.org",
		"extra@example.org",
	}, transport.sentEmails())
	assert.Zero(t, report.Failed())
}

func TestDispatchUnknownChannelIgnored(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, nil, "")

	a := &alert.Alert{ID: "a1", Channels: []alert.Channel{alert.Channel("CARRIER_PIGEON")}}
	report := d.Dispatch(context.Background(), a)

	assert.Empty(t, report.Results)
}

func TestQueueDeliversEnqueuedAlerts(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, nil, "operator@example.org")
	q := NewQueue(d, 2, 8, slog.Default(), observability.NewMetricsForTesting())
	q.Start()

	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(emailAlert([]alert.Channel{alert.ChannelSMS})))
	}
	q.Close()

	assert.Equal(t, 5, transport.sms)
}

func TestQueueDropsWhenFull(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, nil, "")
	q := NewQueue(d, 1, 1, slog.Default(), observability.NewMetricsForTesting())
	// Workers not started, so the buffer fills immediately.

	assert.True(t, q.Enqueue(emailAlert([]alert.Channel{alert.ChannelSMS})))
	assert.False(t, q.Enqueue(emailAlert([]alert.Channel{alert.ChannelSMS})))
}

func TestQueueRejectsAfterClose(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport, nil, "")
	q := NewQueue(d, 1, 4, slog.Default(), observability.NewMetricsForTesting())
	q.Start()
	q.Close()

	assert.False(t, q.Enqueue(emailAlert([]alert.Channel{alert.ChannelSMS})))
	q.Close()
}
