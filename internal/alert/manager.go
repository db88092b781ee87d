package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/observability"
)

// Manager owns the active and history alert lists. All mutations run under a
// single lock; reads return copies taken under the same lock. Notification
// dispatch is never performed here: Create and Acknowledge return immediately
// and the caller schedules delivery separately.
type Manager struct {
	mu      sync.Mutex
	active  []*Alert
	history []*Alert

	zones   domain.ZoneStore
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithClock swaps the time source, for deterministic tests.
func WithClock(c clockwork.Clock) ManagerOption {
	return func(m *Manager) { m.clock = c }
}

// NewManager creates an alert lifecycle manager. zones may be nil, in which
// case no zone matching is performed.
func NewManager(zones domain.ZoneStore, logger *slog.Logger, metrics *observability.Metrics, opts ...ManagerOption) *Manager {
	m := &Manager{
		zones:   zones,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateOptions carries the optional knobs for Create.
type CreateOptions struct {
	// SeverityOverride bypasses the derivation cascade when non-empty.
	SeverityOverride domain.RiskLevel
	// Recipients are appended to the alert's additional recipient list.
	Recipients []string
}

// Create builds an alert from a prediction, matches it against the current
// active zones, and appends it to the active list. Zone store failures are
// logged and degrade to zero matched zones; Create never fails.
func (m *Manager) Create(ctx context.Context, bundle domain.PredictionBundle, opts CreateOptions) *Alert {
	severity := opts.SeverityOverride
	if severity == "" {
		severity = deriveSeverity(bundle.PrimaryConfidence(), bundle.OverallRiskLevel)
	}

	channels := channelsFor(severity)
	if len(opts.Recipients) > 0 {
		channels = ensureChannel(channels, ChannelEmail)
	}

	now := m.clock.Now().UTC()
	title, message := composeContent(bundle, severity)

	a := &Alert{
		ID:                   newAlertID(now, bundle.PrimaryThreat),
		CreatedAt:            now,
		Hazard:               bundle.PrimaryThreat,
		Severity:             severity,
		Title:                title,
		Message:              message,
		Location:             bundle.Location,
		LocationName:         bundle.LocationName,
		Confidence:           bundle.PrimaryConfidence(),
		Channels:             channels,
		MatchedZones:         m.matchZones(ctx, bundle.Location, severity),
		AdditionalRecipients: append([]string(nil), opts.Recipients...),
		Prediction:           bundle,
	}

	m.mu.Lock()
	m.active = append(m.active, a)
	activeCount := len(m.active)
	m.mu.Unlock()

	m.metrics.AlertsCreated.WithLabelValues(string(severity)).Inc()
	m.metrics.AlertsActive.Set(float64(activeCount))
	m.logger.Info("alert created",
		"alert_id", a.ID,
		"hazard", a.Hazard,
		"severity", a.Severity,
		"matched_zones", len(a.MatchedZones),
	)
	return a
}

// matchZones resolves the zones containing the location whose threshold the
// severity clears. Store errors degrade to an empty result.
func (m *Manager) matchZones(ctx context.Context, loc domain.Geo, severity domain.RiskLevel) []domain.Zone {
	if m.zones == nil {
		return nil
	}
	zones, err := m.zones.ActiveZones(ctx)
	if err != nil {
		m.metrics.ZoneLookupErrs.Inc()
		m.logger.Error("zone lookup failed, matching 0 zones", "error", err)
		return nil
	}
	var matched []domain.Zone
	for _, z := range domain.MatchZones(loc.Lat, loc.Lon, zones) {
		if z.MeetsThreshold(severity) {
			matched = append(matched, z)
		}
	}
	return matched
}

// Acknowledge marks an active alert acknowledged and moves it to history.
// The returned alert is a copy for the caller to schedule dispatch with.
// Unknown IDs return (false, nil).
func (m *Manager) Acknowledge(alertID, userID, email string) (bool, *Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.active {
		if a.ID != alertID {
			continue
		}
		now := m.clock.Now().UTC()
		a.Acknowledged = true
		a.AcknowledgedBy = userID
		a.AcknowledgedAt = &now
		a.Title = fmt.Sprintf("[ACKNOWLEDGED] %s", a.Title)
		a.Message = fmt.Sprintf("Acknowledged by %s at %s.\n\n%s", userID, now.Format(time.RFC3339), a.Message)
		a.Channels = ensureChannel(a.Channels, ChannelEmail)
		if email != "" {
			a.AdditionalRecipients = append(a.AdditionalRecipients, email)
		}

		m.active = append(m.active[:i], m.active[i+1:]...)
		m.history = append(m.history, a)

		m.metrics.AlertsAcknowledged.Inc()
		m.metrics.AlertsActive.Set(float64(len(m.active)))
		m.logger.Info("alert acknowledged", "alert_id", alertID, "user_id", userID)

		out := *a
		return true, &out
	}
	return false, nil
}

// Active returns a snapshot of the active list, optionally filtered by
// severity. An empty filter returns everything.
func (m *Manager) Active(severityFilter domain.RiskLevel) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, 0, len(m.active))
	for _, a := range m.active {
		if severityFilter == "" || a.Severity == severityFilter {
			out = append(out, *a)
		}
	}
	return out
}

// History returns the most recent limit acknowledged alerts, newest last.
// A non-positive limit returns the full history.
func (m *Manager) History(limit int) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.history
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]Alert, len(entries))
	for i, a := range entries {
		out[i] = *a
	}
	return out
}

// PurgeHistory drops acknowledged alerts older than the cutoff and reports
// how many were removed.
func (m *Manager) PurgeHistory(olderThan time.Duration) int {
	cutoff := m.clock.Now().UTC().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.history[:0]
	for _, a := range m.history {
		if a.CreatedAt.After(cutoff) {
			kept = append(kept, a)
		}
	}
	purged := len(m.history) - len(kept)
	m.history = kept

	if purged > 0 {
		m.logger.Info("purged alert history", "purged", purged, "cutoff", cutoff)
	}
	return purged
}

func ensureChannel(channels []Channel, c Channel) []Channel {
	for _, ch := range channels {
		if ch == c {
			return channels
		}
	}
	return append(channels, c)
}
