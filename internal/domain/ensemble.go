package domain

// Orchestrator runs the fusion engine across all hazards and assembles a
// PredictionBundle. It is stateless apart from its immutable classifier
// registry and safe for concurrent use.
type Orchestrator struct {
	classifiers map[Hazard]Classifier
}

// OrchestratorOption configures an Orchestrator at construction time.
type OrchestratorOption func(*Orchestrator)

// WithClassifier installs a trained classifier for one hazard. Its output
// replaces the heuristic confidence for that hazard.
func WithClassifier(hazard Hazard, c Classifier) OrchestratorOption {
	return func(o *Orchestrator) {
		o.classifiers[hazard] = c
	}
}

// NewOrchestrator creates an ensemble orchestrator. Hazards without a
// configured classifier use the heuristic fusion rules.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{classifiers: make(map[Hazard]Classifier)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Predict fuses every hazard, selects the primary threat by maximum
// confidence (first in Hazards order on ties), and derives the representative
// spectral signature for the result.
func (o *Orchestrator) Predict(snap SensorSnapshot) PredictionBundle {
	bundle := PredictionBundle{
		Timestamp: clock.Now().UTC(),
		Location:  snap.Location,
		Fire:      Fuse(HazardFire, snap, o.classifiers[HazardFire]),
		Flood:     Fuse(HazardFlood, snap, o.classifiers[HazardFlood]),
		Cyclone:   Fuse(HazardCyclone, snap, o.classifiers[HazardCyclone]),
	}

	primary := Hazards[0]
	for _, h := range Hazards[1:] {
		if bundle.Assessment(h).Confidence > bundle.Assessment(primary).Confidence {
			primary = h
		}
	}
	bundle.PrimaryThreat = primary
	bundle.OverallRiskLevel = bundle.Assessment(primary).RiskLevel
	bundle.SpectralSignature = SpectralSignature(primary, bundle.OverallRiskLevel)
	return bundle
}

// baselineSignature represents typical mixed terrain across the seven bands
// blue, green, red, NIR, SWIR1, SWIR2, thermal.
var baselineSignature = []float64{0.12, 0.15, 0.10, 0.25, 0.18, 0.12, 0.30}

// SpectralSignature derives a representative multi-band reflectance profile
// for explanatory display. It is deterministic: a fixed profile per hazard
// and severity combination, the baseline for anything unrecognized.
func SpectralSignature(threat Hazard, severity RiskLevel) []float64 {
	mult := 2.2
	switch severity {
	case RiskLow:
		mult = 1.0
	case RiskMedium:
		mult = 1.5
	}

	switch threat {
	case HazardFire:
		// High SWIR from heat, suppressed NIR from dead vegetation, extreme thermal.
		return []float64{0.08, 0.10, 0.35 * mult, 0.15 / mult, 0.85 * mult, 0.95 * mult, 0.98}
	case HazardFlood:
		// Water: elevated blue/green, near-zero NIR/SWIR since water absorbs IR.
		return []float64{0.45 * mult, 0.35 * mult, 0.15, 0.05, 0.02, 0.01, 0.25}
	case HazardCyclone:
		// Cloud deck: high reflectance across visible/NIR, cold cloud-top thermal.
		return []float64{0.85, 0.88, 0.90, 0.82, 0.40, 0.30, 0.15}
	default:
		out := make([]float64, len(baselineSignature))
		copy(out, baselineSignature)
		return out
	}
}
