package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/config"
	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/observability"
)

// SnapshotProvider obtains the current sensor snapshot for a location. This
// is where satellite and weather collectors plug in.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, lat, lon float64) (domain.SensorSnapshot, error)
}

// Predictor produces a full ensemble prediction for one snapshot.
type Predictor interface {
	Predict(snap domain.SensorSnapshot) domain.PredictionBundle
}

// AlertSink receives promoted predictions.
type AlertSink interface {
	Create(ctx context.Context, bundle domain.PredictionBundle, opts alert.CreateOptions) *alert.Alert
	PurgeHistory(olderThan time.Duration) int
}

// Scheduler queues an alert for notification delivery.
type Scheduler interface {
	Enqueue(a *alert.Alert) bool
}

// Monitor periodically sweeps the configured watch locations plus the
// centroids of all active zones, promoting predictions that clear the
// threshold into alerts with queued dispatch. A daily job purges old history.
type Monitor struct {
	provider  SnapshotProvider
	predictor Predictor
	alerts    AlertSink
	scheduler Scheduler
	zones     domain.ZoneStore

	locations []config.WatchLocation
	threshold float64
	interval  time.Duration
	retention time.Duration

	logger  *slog.Logger
	metrics *observability.Metrics

	cron  *cron.Cron
	ready atomic.Bool
}

// New creates a monitor. zones may be nil to skip the centroid sweep.
func New(
	provider SnapshotProvider,
	predictor Predictor,
	alerts AlertSink,
	scheduler Scheduler,
	zones domain.ZoneStore,
	cfg *config.Config,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Monitor {
	return &Monitor{
		provider:  provider,
		predictor: predictor,
		alerts:    alerts,
		scheduler: scheduler,
		zones:     zones,
		locations: cfg.MonitorLocations,
		threshold: cfg.PromoteThreshold,
		interval:  cfg.MonitorInterval,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start registers the sweep and retention jobs and launches the scheduler.
func (m *Monitor) Start() error {
	m.cron = cron.New()

	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), func() {
		m.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	if _, err := m.cron.AddFunc("@daily", func() {
		purged := m.alerts.PurgeHistory(m.retention)
		m.logger.Info("retention sweep finished", "purged", purged)
	}); err != nil {
		return fmt.Errorf("register retention job: %w", err)
	}

	m.cron.Start()
	m.metrics.MonitorRunning.Set(1)
	m.logger.Info("monitor started",
		"interval", m.interval,
		"watch_locations", len(m.locations),
		"promote_threshold", m.threshold,
	)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.metrics.MonitorRunning.Set(0)
	m.logger.Info("monitor stopped")
}

// CheckReadiness returns nil once at least one sweep has completed.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a sweep yet")
	}
	return nil
}

// Sweep walks every watch location and active-zone centroid once. Failures
// are per-location: a dead provider or zone store never aborts the cycle.
func (m *Monitor) Sweep(ctx context.Context) {
	promoted := 0
	failures := 0

	for _, loc := range m.sweepTargets(ctx) {
		if ok := m.evaluate(ctx, loc, &promoted); !ok {
			failures++
		}
	}

	outcome := "success"
	if failures > 0 {
		outcome = "error"
	}
	m.metrics.MonitorCycles.WithLabelValues(outcome).Inc()
	m.ready.Store(true)
	m.logger.Info("sweep finished", "promoted", promoted, "failures", failures)
}

// sweepTargets merges the configured watch locations with the centroids of
// all active zones, named after the zone.
func (m *Monitor) sweepTargets(ctx context.Context) []config.WatchLocation {
	targets := append([]config.WatchLocation(nil), m.locations...)

	if m.zones == nil {
		return targets
	}
	zones, err := m.zones.ActiveZones(ctx)
	if err != nil {
		m.metrics.ZoneLookupErrs.Inc()
		m.logger.Error("zone lookup failed, sweeping watch locations only", "error", err)
		return targets
	}
	for _, z := range zones {
		c := centroid(z.Polygon)
		targets = append(targets, config.WatchLocation{Name: z.Name, Lat: c.Lat, Lon: c.Lon})
	}
	return targets
}

func (m *Monitor) evaluate(ctx context.Context, loc config.WatchLocation, promoted *int) bool {
	snap, err := m.provider.Snapshot(ctx, loc.Lat, loc.Lon)
	if err != nil {
		m.logger.Error("snapshot failed", "location", loc.Name, "lat", loc.Lat, "lon", loc.Lon, "error", err)
		return false
	}
	snap.Location = domain.Geo{Lat: loc.Lat, Lon: loc.Lon}

	started := time.Now()
	bundle := m.predictor.Predict(snap)
	m.metrics.FusionDuration.Observe(time.Since(started).Seconds())
	if bundle.LocationName == "" {
		bundle.LocationName = loc.Name
	}
	for _, h := range domain.Hazards {
		a := bundle.Assessment(h)
		m.metrics.Predictions.WithLabelValues(string(h), string(a.RiskLevel)).Inc()
	}

	if bundle.PrimaryConfidence() < m.threshold {
		return true
	}

	created := m.alerts.Create(ctx, bundle, alert.CreateOptions{})
	m.scheduler.Enqueue(created)
	*promoted++
	m.logger.Info("prediction promoted to alert",
		"alert_id", created.ID,
		"location", loc.Name,
		"hazard", bundle.PrimaryThreat,
		"confidence", bundle.PrimaryConfidence(),
	)
	return true
}

// centroid is the vertex mean, good enough for picking a sampling point
// inside typical convex zones.
func centroid(polygon []domain.Geo) domain.Geo {
	if len(polygon) == 0 {
		return domain.Geo{}
	}
	var c domain.Geo
	for _, p := range polygon {
		c.Lat += p.Lat
		c.Lon += p.Lon
	}
	c.Lat /= float64(len(polygon))
	c.Lon /= float64(len(polygon))
	return c
}
