package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/sdars/hazard-engine/internal/domain"
	"github.com/sdars/hazard-engine/internal/observability"
)

type countingPredictor struct {
	calls int
}

func (p *countingPredictor) Predict(snap domain.SensorSnapshot) domain.PredictionBundle {
	p.calls++
	return domain.PredictionBundle{
		Location:      snap.Location,
		PrimaryThreat: domain.HazardFire,
		Fire:          domain.RiskAssessment{Confidence: float64(p.calls)},
	}
}

func snapshotAt(lat, lon float64) domain.SensorSnapshot {
	return domain.SensorSnapshot{Location: domain.Geo{Lat: lat, Lon: lon}}
}

func TestCachedPredictorHit(t *testing.T) {
	inner := &countingPredictor{}
	fc := clockwork.NewFakeClock()
	c := New(inner, 15*time.Minute, observability.NewMetricsForTesting(), WithClock(fc))

	first := c.Predict(snapshotAt(19.0760, 72.8777))
	second := c.Predict(snapshotAt(19.0760, 72.8777))

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCachedPredictorExpiry(t *testing.T) {
	inner := &countingPredictor{}
	fc := clockwork.NewFakeClock()
	c := New(inner, 15*time.Minute, observability.NewMetricsForTesting(), WithClock(fc))

	c.Predict(snapshotAt(19.0760, 72.8777))
	fc.Advance(14 * time.Minute)
	c.Predict(snapshotAt(19.0760, 72.8777))
	assert.Equal(t, 1, inner.calls, "still fresh just under the TTL")

	fc.Advance(2 * time.Minute)
	refreshed := c.Predict(snapshotAt(19.0760, 72.8777))
	assert.Equal(t, 2, inner.calls, "recomputed after expiry")
	assert.Equal(t, 2.0, refreshed.Fire.Confidence)

	// The overwrite restarts the TTL.
	fc.Advance(1 * time.Minute)
	c.Predict(snapshotAt(19.0760, 72.8777))
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPredictorKeyRounding(t *testing.T) {
	inner := &countingPredictor{}
	c := New(inner, 15*time.Minute, observability.NewMetricsForTesting(), WithClock(clockwork.NewFakeClock()))

	// Within ~100m of each other: same key.
	c.Predict(snapshotAt(19.07601, 72.87769))
	c.Predict(snapshotAt(19.07640, 72.87790))
	assert.Equal(t, 1, inner.calls)

	// A fourth-decimal difference that survives rounding is a new key.
	c.Predict(snapshotAt(19.077, 72.8777))
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, c.Len())
}

func TestCachedPredictorDistinctLocations(t *testing.T) {
	inner := &countingPredictor{}
	c := New(inner, 15*time.Minute, observability.NewMetricsForTesting(), WithClock(clockwork.NewFakeClock()))

	c.Predict(snapshotAt(19.0760, 72.8777))
	c.Predict(snapshotAt(28.7041, 77.1025))

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, c.Len())
}
