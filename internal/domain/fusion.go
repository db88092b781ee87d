package domain

import (
	"fmt"
	"math"
)

// Fusion constants. These are operationally tuned magic numbers carried over
// from field calibration; do not adjust without a product decision.
const (
	synergyBoost     = 1.2 // applied when both branches exceed synergyFloor on a nominal signal
	synergyFloor     = 0.6
	integrityPenalty = 0.5 // confidence multiplier under a degraded satellite signal
	hotspotFloor     = 0.8 // minimum fire confidence once hotspots are confirmed
)

// branchResult is one branch's clipped score plus the reasons that built it.
type branchResult struct {
	score   float64
	reasons []string
}

// fusionProfile describes how one hazard fuses its two branches.
type fusionProfile struct {
	satWeight     float64
	weatherWeight float64
	highCut       float64
	mediumCut     float64
	satBranch     func(SensorSnapshot) branchResult
	weatherBranch func(SensorSnapshot) branchResult
}

var fusionProfiles = map[Hazard]fusionProfile{
	HazardFire: {
		satWeight: 0.6, weatherWeight: 0.4,
		highCut: 0.7, mediumCut: 0.35,
		satBranch:     fireSatelliteBranch,
		weatherBranch: fireWeatherBranch,
	},
	HazardFlood: {
		satWeight: 0.3, weatherWeight: 0.7,
		highCut: 0.65, mediumCut: 0.3,
		satBranch:     floodSatelliteBranch,
		weatherBranch: floodWeatherBranch,
	},
	HazardCyclone: {
		satWeight: 0.2, weatherWeight: 0.8,
		highCut: 0.6, mediumCut: 0.3,
		satBranch:     cycloneSatelliteBranch,
		weatherBranch: cycloneWeatherBranch,
	},
}

// Fuse scores one hazard from a snapshot. It never fails: missing inputs fall
// back to neutral defaults and a degraded satellite signal becomes a
// confidence penalty rather than an error. classifier may be nil.
func Fuse(hazard Hazard, snap SensorSnapshot, classifier Classifier) RiskAssessment {
	profile, ok := fusionProfiles[hazard]
	if !ok {
		return RiskAssessment{RiskLevel: RiskLow, Reasons: []string{}}
	}

	sat := profile.satBranch(snap)
	weather := profile.weatherBranch(snap)
	reasons := make([]string, 0, len(sat.reasons)+len(weather.reasons))
	reasons = append(reasons, sat.reasons...)
	reasons = append(reasons, weather.reasons...)

	degraded := snap.quality().Degraded()
	if degraded {
		// A blind sensor must not masquerade as corroborating evidence.
		sat.score = 0
		reasons = append(reasons, "sensor blackout: scoring without satellite confirmation")
	}

	var score float64
	if classifier != nil {
		if p, err := classifier.Score(snap.ClassifierFeatures()); err == nil {
			score = clip01(p)
		} else {
			score = fuseBranches(sat.score, weather.score, profile, degraded)
		}
	} else {
		score = fuseBranches(sat.score, weather.score, profile, degraded)
	}

	if hazard == HazardFire {
		if n := snap.thermal().HotspotCount; n > 0 && score < hotspotFloor {
			score = hotspotFloor
			reasons = append(reasons, fmt.Sprintf("satellite: %d confirmed thermal hotspot detections", n))
		}
	}

	if degraded {
		score *= integrityPenalty
	}

	confidence := round2(clip01(score))
	return RiskAssessment{
		RiskLevel:             classify(confidence, profile),
		Confidence:            confidence,
		Reasons:               reasons,
		SatelliteContribution: round2(sat.score * profile.satWeight),
		WeatherContribution:   round2(weather.score * profile.weatherWeight),
	}
}

// fuseBranches combines the two branch scores as a weighted sum, boosting
// synergistic high-risk agreement only when the signal is nominal.
func fuseBranches(satScore, weatherScore float64, profile fusionProfile, degraded bool) float64 {
	combined := satScore*profile.satWeight + weatherScore*profile.weatherWeight
	if satScore > synergyFloor && weatherScore > synergyFloor && !degraded {
		combined = math.Min(combined*synergyBoost, 1.0)
	}
	return combined
}

func classify(confidence float64, profile fusionProfile) RiskLevel {
	switch {
	case confidence > profile.highCut:
		return RiskHigh
	case confidence > profile.mediumCut:
		return RiskMedium
	default:
		return RiskLow
	}
}

func fireSatelliteBranch(snap SensorSnapshot) branchResult {
	var b branchResult
	t := snap.thermal()
	if t.HotspotPercentage > 0.5 {
		b.score += 0.5
		b.reasons = append(b.reasons, fmt.Sprintf("satellite: %.1f%% hotspot density", t.HotspotPercentage))
	}
	if t.Max > 45 {
		b.score += 0.3
		b.reasons = append(b.reasons, fmt.Sprintf("satellite: extreme thermal anomaly %.0f°C", t.Max))
	}
	if snap.ndviMean() < 0.2 {
		b.score += 0.2
		b.reasons = append(b.reasons, "satellite: low fuel moisture, dry vegetation")
	}
	b.score = clip01(b.score)
	return b
}

func fireWeatherBranch(snap SensorSnapshot) branchResult {
	var b branchResult
	w := snap.weather()
	if w.Temperature > 38 && w.Humidity < 20 {
		b.score += 0.6
		b.reasons = append(b.reasons, "weather: critical fire weather index")
	}
	if w.WindSpeed > 25 {
		b.score += 0.3
		b.reasons = append(b.reasons, fmt.Sprintf("weather: high spread potential at %.0f km/h", w.WindSpeed))
	}
	if snap.Changes.TempChange6h > 4 {
		b.score += 0.1
		b.reasons = append(b.reasons, "weather: rapidly rising temperature")
	}
	b.score = clip01(b.score)
	return b
}

func floodSatelliteBranch(snap SensorSnapshot) branchResult {
	var b branchResult
	if ndwi := snap.ndwiMean(); ndwi > 0.3 {
		b.score += 0.7
		b.reasons = append(b.reasons, fmt.Sprintf("satellite: high surface water index %.2f", ndwi))
	}
	b.score = clip01(b.score)
	return b
}

func floodWeatherBranch(snap SensorSnapshot) branchResult {
	var b branchResult
	w := snap.weather()
	if w.Rain1h > 40 {
		b.score += 0.5
		b.reasons = append(b.reasons, fmt.Sprintf("weather: extreme hourly rainfall %.0f mm", w.Rain1h))
	}
	if rain := snap.rain24h(); rain > 100 {
		b.score += 0.4
		b.reasons = append(b.reasons, fmt.Sprintf("weather: saturated soil, %.0f mm over 24h", rain))
	}
	b.score = clip01(b.score)
	return b
}

func cycloneSatelliteBranch(snap SensorSnapshot) branchResult {
	var b branchResult
	clouds := snap.weather().Clouds
	b.score = clip01(clouds / 100 * 0.4)
	if clouds > 90 {
		b.reasons = append(b.reasons, "satellite: dense cyclonic cloud formation")
	}
	return b
}

func cycloneWeatherBranch(snap SensorSnapshot) branchResult {
	var b branchResult
	w := snap.weather()
	if drop := snap.Changes.PressureChange12h; drop < -15 {
		b.score += 0.6
		b.reasons = append(b.reasons, fmt.Sprintf("weather: catastrophic pressure drop %.0f hPa", drop))
	}
	if w.WindSpeed > 40 {
		b.score += 0.3
		b.reasons = append(b.reasons, fmt.Sprintf("weather: gale force winds %.0f km/h", w.WindSpeed))
	}
	b.score = clip01(b.score)
	return b
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
