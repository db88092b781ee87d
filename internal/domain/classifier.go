package domain

// ClassifierFeatureCount is the width of the trained-model feature vector.
const ClassifierFeatureCount = 7

// Classifier scores a feature vector into a risk probability in [0, 1].
// Feature order is fixed: temperature, humidity, wind speed, pressure,
// NDVI mean, NDWI mean, hotspot count. A classifier is configured per hazard
// at construction time; when present its output replaces the heuristic
// confidence, though the integrity penalty still applies afterward.
type Classifier interface {
	Score(features [ClassifierFeatureCount]float64) (float64, error)
}

// ClassifierFeatures extracts the fixed-order feature vector from a snapshot.
func (s SensorSnapshot) ClassifierFeatures() [ClassifierFeatureCount]float64 {
	w := s.weather()
	t := s.thermal()
	return [ClassifierFeatureCount]float64{
		w.Temperature,
		w.Humidity,
		w.WindSpeed,
		w.Pressure,
		s.ndviMean(),
		s.ndwiMean(),
		float64(t.HotspotCount),
	}
}
