package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/observability"
)

// Transport delivers one notification on one channel. Implementations return
// an error for the single delivery they attempted; the dispatcher owns
// fan-out and failure isolation.
type Transport interface {
	SendSystem(ctx context.Context, a *alert.Alert) error
	SendEmail(ctx context.Context, a *alert.Alert, recipient string) error
	SendSMS(ctx context.Context, a *alert.Alert) error
	SendPush(ctx context.Context, a *alert.Alert) error
}

// ChannelResult is the outcome of one delivery attempt.
type ChannelResult struct {
	Channel   alert.Channel
	Recipient string
	Err       error
}

// Report aggregates the delivery outcomes for one alert.
type Report struct {
	AlertID string
	Results []ChannelResult
}

// Succeeded counts deliveries without an error.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts deliveries with an error.
func (r Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Dispatcher resolves concrete recipients for an alert's channel set and
// invokes the transport per delivery. One recipient's failure never blocks
// the rest; every attempt lands in the report.
type Dispatcher struct {
	transport    Transport
	subscribers  domain.SubscriberStore
	defaultEmail string
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewDispatcher creates a dispatcher. subscribers may be nil to skip
// subscription lookups; defaultEmail may be empty when no operator address
// is configured.
func NewDispatcher(t Transport, subscribers domain.SubscriberStore, defaultEmail string, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		transport:    t,
		subscribers:  subscribers,
		defaultEmail: defaultEmail,
		logger:       logger,
		metrics:      metrics,
	}
}

// Dispatch delivers the alert on every channel it carries and returns the
// aggregated report.
func (d *Dispatcher) Dispatch(ctx context.Context, a *alert.Alert) Report {
	report := Report{AlertID: a.ID}

	for _, channel := range a.Channels {
		switch channel {
		case alert.ChannelSystem:
			report.Results = append(report.Results, d.attempt(channel, "", d.transport.SendSystem(ctx, a)))
		case alert.ChannelEmail:
			recipients := d.resolveEmailRecipients(ctx, a)
			if len(recipients) == 0 {
				d.logger.Info("no email recipients resolved, skipping", "alert_id", a.ID)
				d.metrics.Dispatches.WithLabelValues(string(channel), "skipped").Inc()
				continue
			}
			for _, recipient := range recipients {
				report.Results = append(report.Results, d.attempt(channel, recipient, d.transport.SendEmail(ctx, a, recipient)))
			}
		case alert.ChannelSMS:
			report.Results = append(report.Results, d.attempt(channel, "", d.transport.SendSMS(ctx, a)))
		case alert.ChannelPush:
			report.Results = append(report.Results, d.attempt(channel, "", d.transport.SendPush(ctx, a)))
		default:
			d.logger.Warn("unknown notification channel", "alert_id", a.ID, "channel", channel)
		}
	}

	if failed := report.Failed(); failed > 0 {
		d.logger.Warn("dispatch completed with failures",
			"alert_id", a.ID,
			"succeeded", report.Succeeded(),
			"failed", failed,
		)
	}
	return report
}

func (d *Dispatcher) attempt(channel alert.Channel, recipient string, err error) ChannelResult {
	outcome := "success"
	if err != nil {
		outcome = "error"
		d.logger.Error("delivery failed", "channel", channel, "recipient", recipient, "error", err)
	}
	d.metrics.Dispatches.WithLabelValues(string(channel), outcome).Inc()
	return ChannelResult{Channel: channel, Recipient: recipient, Err: err}
}

// resolveEmailRecipients builds the ordered, deduplicated recipient list:
// default operator address, then matched zones' recipient emails, then zone
// subscribers, then the alert's additional recipients. Addresses without an
// '@' are dropped. Subscriber store failures degrade to an empty lookup.
func (d *Dispatcher) resolveEmailRecipients(ctx context.Context, a *alert.Alert) []string {
	var recipients []string
	seen := make(map[string]struct{})
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" || !strings.Contains(addr, "@") {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		recipients = append(recipients, addr)
	}

	add(d.defaultEmail)
	for _, zone := range a.MatchedZones {
		for _, addr := range zone.RecipientEmails {
			add(addr)
		}
	}
	if d.subscribers != nil {
		for _, zone := range a.MatchedZones {
			subs, err := d.subscribers.SubscribersForZone(ctx, zone.Name)
			if err != nil {
				d.metrics.ZoneLookupErrs.Inc()
				d.logger.Error("subscriber lookup failed", "zone", zone.Name, "error", err)
				continue
			}
			for _, addr := range subs {
				add(addr)
			}
		}
	}
	for _, addr := range a.AdditionalRecipients {
		add(addr)
	}
	return recipients
}
