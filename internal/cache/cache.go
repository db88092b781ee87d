package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/observability"
)

// Predictor produces a full ensemble prediction for one snapshot.
type Predictor interface {
	Predict(snap domain.SensorSnapshot) domain.PredictionBundle
}

// CachedPredictor wraps a Predictor with a TTL cache keyed by coordinates
// rounded to three decimals (roughly 100m). A fresh entry is returned as-is;
// anything older than the TTL is recomputed and overwritten. Bundles are
// immutable once stored, so the single lock only guards the map itself.
type CachedPredictor struct {
	inner   Predictor
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	bundle   domain.PredictionBundle
	storedAt time.Time
}

// Option configures a CachedPredictor at construction time.
type Option func(*CachedPredictor)

// WithClock swaps the time source, for deterministic TTL tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *CachedPredictor) { p.clock = c }
}

// New creates a cache decorator around a predictor.
func New(inner Predictor, ttl time.Duration, metrics *observability.Metrics, opts ...Option) *CachedPredictor {
	p := &CachedPredictor{
		inner:   inner,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict returns the cached bundle for the snapshot's location when it is
// still fresh, otherwise recomputes and stores the result.
func (p *CachedPredictor) Predict(snap domain.SensorSnapshot) domain.PredictionBundle {
	key := coordKey(snap.Location)
	now := p.clock.Now()

	p.mu.Lock()
	e, ok := p.entries[key]
	p.mu.Unlock()

	if ok {
		if now.Sub(e.storedAt) < p.ttl {
			p.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return e.bundle
		}
		p.metrics.CacheLookups.WithLabelValues("expired").Inc()
	} else {
		p.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	bundle := p.inner.Predict(snap)

	p.mu.Lock()
	p.entries[key] = cacheEntry{bundle: bundle, storedAt: now}
	p.mu.Unlock()

	return bundle
}

// Len reports the number of cached locations.
func (p *CachedPredictor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func coordKey(loc domain.Geo) string {
	return fmt.Sprintf("%.3f,%.3f", loc.Lat, loc.Lon)
}
