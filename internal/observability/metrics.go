package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// hazard engine.
type Metrics struct {
	Predictions    *prometheus.CounterVec // labels: hazard={fire,flood,cyclone}, level={LOW,MEDIUM,HIGH}
	FusionDuration prometheus.Histogram
	MonitorRunning prometheus.Gauge

	// Prediction cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss,expired}

	// Alert lifecycle metrics.
	AlertsCreated      *prometheus.CounterVec // labels: severity
	AlertsAcknowledged prometheus.Counter
	AlertsActive       prometheus.Gauge

	// Notification dispatch metrics.
	Dispatches     *prometheus.CounterVec // labels: channel={SYSTEM,EMAIL,SMS,PUSH}, outcome={success,error,skipped}
	DispatchQueue  prometheus.Gauge
	DispatchDrops  prometheus.Counter
	MonitorCycles  *prometheus.CounterVec // labels: outcome={success,error}
	ZoneLookupErrs prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "predictions_total",
			Help:      "Fused predictions by hazard and classified risk level.",
		}, []string{"hazard", "level"}),
		FusionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazard_engine",
			Name:      "fusion_duration_seconds",
			Help:      "Duration of a full three-hazard ensemble prediction.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_engine",
			Name:      "monitor_running",
			Help:      "1 when the scheduled monitor is active, 0 when shut down.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "prediction_cache_lookups_total",
			Help:      "Prediction cache lookups by result.",
		}, []string{"result"}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "alerts_created_total",
			Help:      "Alerts created, by derived severity.",
		}, []string{"severity"}),
		AlertsAcknowledged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "alerts_acknowledged_total",
			Help:      "Alerts moved from the active list to history.",
		}),
		AlertsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_engine",
			Name:      "alerts_active",
			Help:      "Current size of the active alert list.",
		}),
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "dispatches_total",
			Help:      "Notification deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		DispatchQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazard_engine",
			Name:      "dispatch_queue_depth",
			Help:      "Dispatch jobs waiting for a worker.",
		}),
		DispatchDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "dispatch_drops_total",
			Help:      "Dispatch jobs rejected because the queue was full.",
		}),
		MonitorCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "monitor_cycles_total",
			Help:      "Scheduled monitor sweeps by outcome.",
		}, []string{"outcome"}),
		ZoneLookupErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazard_engine",
			Name:      "zone_lookup_errors_total",
			Help:      "Zone or subscriber store failures degraded to empty results.",
		}),
	}

	prometheus.MustRegister(
		m.Predictions,
		m.FusionDuration,
		m.MonitorRunning,
		m.CacheLookups,
		m.AlertsCreated,
		m.AlertsAcknowledged,
		m.AlertsActive,
		m.Dispatches,
		m.DispatchQueue,
		m.DispatchDrops,
		m.MonitorCycles,
		m.ZoneLookupErrs,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Predictions:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "predictions_total"}, []string{"hazard", "level"}),
		FusionDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazard_engine", Name: "fusion_duration_seconds"}),
		MonitorRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_engine", Name: "monitor_running"}),
		CacheLookups:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "prediction_cache_lookups_total"}, []string{"result"}),
		AlertsCreated:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "alerts_created_total"}, []string{"severity"}),
		AlertsAcknowledged: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "alerts_acknowledged_total"}),
		AlertsActive:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_engine", Name: "alerts_active"}),
		Dispatches:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "dispatches_total"}, []string{"channel", "outcome"}),
		DispatchQueue:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazard_engine", Name: "dispatch_queue_depth"}),
		DispatchDrops:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "dispatch_drops_total"}),
		MonitorCycles:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "monitor_cycles_total"}, []string{"outcome"}),
		ZoneLookupErrs:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazard_engine", Name: "zone_lookup_errors_total"}),
	}
}
