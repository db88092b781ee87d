package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var squareZone = []Geo{{0, 0}, {0, 10}, {10, 10}, {10, 0}}

func TestContainsPoint(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		polygon  []Geo
		want     bool
	}{
		{"center of square", 5, 5, squareZone, true},
		{"outside square", 15, 15, squareZone, false},
		{"west of square", 5, -1, squareZone, false},
		{"first vertex counted once", 0, 0, squareZone, true},
		{"opposite vertex counted zero times", 10, 10, squareZone, false},
		{"degenerate two-point polygon", 5, 5, []Geo{{0, 0}, {10, 10}}, false},
		{"empty polygon", 5, 5, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContainsPoint(tc.lat, tc.lon, tc.polygon))
		})
	}
}

func TestContainsPointConcave(t *testing.T) {
	// An L shape with the notch at high-lat/high-lon.
	lShape := []Geo{{0, 0}, {0, 10}, {5, 10}, {5, 5}, {10, 5}, {10, 0}}

	assert.True(t, ContainsPoint(2, 7, lShape), "lower arm")
	assert.True(t, ContainsPoint(7, 2, lShape), "upper arm")
	assert.False(t, ContainsPoint(7, 7, lShape), "inside the notch")
}

func TestMatchZones(t *testing.T) {
	zones := []Zone{
		{ID: "z1", Name: "harbor", Polygon: squareZone, Active: true},
		{ID: "z2", Name: "disabled", Polygon: squareZone, Active: false},
		{ID: "z3", Name: "elsewhere", Polygon: []Geo{{20, 20}, {20, 30}, {30, 30}, {30, 20}}, Active: true},
	}

	matched := MatchZones(5, 5, zones)

	assert.Len(t, matched, 1)
	assert.Equal(t, "z1", matched[0].ID)

	assert.Empty(t, MatchZones(50, 50, zones))
}

func TestZoneMeetsThreshold(t *testing.T) {
	zone := Zone{SeverityThreshold: RiskHigh}

	assert.False(t, zone.MeetsThreshold(RiskLow))
	assert.False(t, zone.MeetsThreshold(RiskMedium))
	assert.True(t, zone.MeetsThreshold(RiskHigh))
	assert.True(t, zone.MeetsThreshold(RiskCritical))

	// An unset threshold ranks as LOW and admits everything.
	assert.True(t, Zone{}.MeetsThreshold(RiskLow))
}

func TestParseRiskLevel(t *testing.T) {
	for _, valid := range []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"} {
		level, ok := ParseRiskLevel(valid)
		assert.True(t, ok)
		assert.Equal(t, RiskLevel(valid), level)
	}

	for _, invalid := range []string{"", "low", "SEVERE", "EXTREME"} {
		_, ok := ParseRiskLevel(invalid)
		assert.False(t, ok, "%q should not parse", invalid)
	}
}
