package domain

import "time"

// Hazard identifies one of the modeled disaster types.
type Hazard string

const (
	HazardFire    Hazard = "fire"
	HazardFlood   Hazard = "flood"
	HazardCyclone Hazard = "cyclone"
)

// Hazards lists all modeled hazards in ensemble evaluation order.
var Hazards = []Hazard{HazardFire, HazardFlood, HazardCyclone}

// RiskLevel is an ordered urgency label. Fusion emits LOW through HIGH;
// CRITICAL exists only for the alert escalation cascade.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Rank places levels on the total order LOW < MEDIUM < HIGH < CRITICAL.
// Unknown labels rank as LOW.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// ParseRiskLevel validates a severity label, returning ok=false for anything
// outside the four known values.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(s), true
	default:
		return "", false
	}
}

// RiskAssessment is the fused per-hazard result: a bounded confidence, the
// level it classifies to, ordered human-readable reasons, and the effective
// weighted contribution of each branch.
type RiskAssessment struct {
	RiskLevel             RiskLevel `json:"risk_level"`
	Confidence            float64   `json:"confidence"`
	Reasons               []string  `json:"reasons"`
	SatelliteContribution float64   `json:"satellite_contribution"`
	WeatherContribution   float64   `json:"weather_contribution"`
}

// PredictionBundle is the full ensemble output for one snapshot.
// PrimaryThreat is the hazard with the highest confidence and
// OverallRiskLevel is that hazard's level.
type PredictionBundle struct {
	Timestamp         time.Time      `json:"timestamp"`
	Location          Geo            `json:"location"`
	LocationName      string         `json:"location_name,omitempty"`
	Fire              RiskAssessment `json:"fire"`
	Flood             RiskAssessment `json:"flood"`
	Cyclone           RiskAssessment `json:"cyclone"`
	PrimaryThreat     Hazard         `json:"primary_threat"`
	OverallRiskLevel  RiskLevel      `json:"overall_risk_level"`
	SpectralSignature []float64      `json:"spectral_signature"`
}

// Assessment returns the per-hazard result for h.
func (p PredictionBundle) Assessment(h Hazard) RiskAssessment {
	switch h {
	case HazardFlood:
		return p.Flood
	case HazardCyclone:
		return p.Cyclone
	default:
		return p.Fire
	}
}

// PrimaryConfidence is the confidence of the primary threat.
func (p PredictionBundle) PrimaryConfidence() float64 {
	return p.Assessment(p.PrimaryThreat).Confidence
}
