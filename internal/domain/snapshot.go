package domain

import "time"

// DataQuality tags the trustworthiness of a satellite frame.
type DataQuality string

const (
	QualityRealSignal      DataQuality = "REAL_SIGNAL"
	QualityRealSatellite   DataQuality = "REAL_SATELLITE_DATA"
	QualityStaleOrZero     DataQuality = "STALE_OR_ZERO"
	QualityZeroSignal      DataQuality = "ZERO_SIGNAL"
	QualityCorruptedStream DataQuality = "CORRUPTED_STREAM"
)

// Degraded reports whether the tag triggers the integrity penalty.
func (q DataQuality) Degraded() bool {
	switch q {
	case QualityStaleOrZero, QualityZeroSignal, QualityCorruptedStream:
		return true
	default:
		return false
	}
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ThermalStats summarizes the thermal band of a satellite frame.
// Temperatures are in °C, HotspotPercentage in percent of pixels.
type ThermalStats struct {
	Mean              float64 `json:"mean_temperature"`
	Max               float64 `json:"max_temperature"`
	Std               float64 `json:"std_temperature"`
	HotspotCount      int     `json:"hotspot_count"`
	HotspotPercentage float64 `json:"hotspot_percentage"`
}

// SatelliteAnalysis holds the processed output of one satellite frame.
// NDVI and NDWI are flattened index arrays in [-1, 1].
type SatelliteAnalysis struct {
	Thermal     ThermalStats `json:"thermal"`
	NDVI        []float64    `json:"ndvi,omitempty"`
	NDWI        []float64    `json:"ndwi,omitempty"`
	DataQuality DataQuality  `json:"data_quality,omitempty"`
}

// WeatherObservation is the current surface weather at the snapshot location.
// Wind speed is km/h, pressure hPa, rainfall mm.
type WeatherObservation struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    float64 `json:"pressure"`
	Clouds      float64 `json:"clouds"`
	Rain1h      float64 `json:"rain_1h"`
	Visibility  float64 `json:"visibility"`
}

// WeatherSample is one hourly row of the historical series.
type WeatherSample struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Rainfall    float64   `json:"rainfall"`
}

// WeatherChanges holds rate-of-change deltas over fixed trailing windows,
// current value minus the value N hours earlier.
type WeatherChanges struct {
	TempChange1h      float64 `json:"temp_change_1h"`
	TempChange3h      float64 `json:"temp_change_3h"`
	TempChange6h      float64 `json:"temp_change_6h"`
	TempChange12h     float64 `json:"temp_change_12h"`
	PressureChange1h  float64 `json:"pressure_change_1h"`
	PressureChange3h  float64 `json:"pressure_change_3h"`
	PressureChange6h  float64 `json:"pressure_change_6h"`
	PressureChange12h float64 `json:"pressure_change_12h"`
	HumidityChange1h  float64 `json:"humidity_change_1h"`
	HumidityChange3h  float64 `json:"humidity_change_3h"`
	WindChange1h      float64 `json:"wind_change_1h"`
	WindChange3h      float64 `json:"wind_change_3h"`
}

// SensorSnapshot bundles every signal known about one location at one moment.
// Satellite and Weather are optional; fusion substitutes neutral defaults for
// whatever is missing and never fails on incomplete input.
type SensorSnapshot struct {
	Location  Geo
	Satellite *SatelliteAnalysis
	Weather   *WeatherObservation
	History   []WeatherSample
	Changes   WeatherChanges
}

// thermal returns the thermal stats, zero-valued when no satellite frame is present.
func (s SensorSnapshot) thermal() ThermalStats {
	if s.Satellite == nil {
		return ThermalStats{}
	}
	return s.Satellite.Thermal
}

// quality returns the data-quality tag, defaulting to a nominal signal.
func (s SensorSnapshot) quality() DataQuality {
	if s.Satellite == nil || s.Satellite.DataQuality == "" {
		return QualityRealSignal
	}
	return s.Satellite.DataQuality
}

// ndviMean averages the vegetation index. A missing array is neutral (0.5):
// healthy-enough vegetation, so the dry-fuel rule stays quiet.
func (s SensorSnapshot) ndviMean() float64 {
	if s.Satellite == nil || len(s.Satellite.NDVI) == 0 {
		return 0.5
	}
	return mean(s.Satellite.NDVI)
}

// ndwiMean averages the water index. A missing array reads as no surface water.
func (s SensorSnapshot) ndwiMean() float64 {
	if s.Satellite == nil || len(s.Satellite.NDWI) == 0 {
		return 0
	}
	return mean(s.Satellite.NDWI)
}

// weather returns the current observation with neutral defaults when absent:
// saturated humidity so the fire weather rule cannot fire on no data.
func (s SensorSnapshot) weather() WeatherObservation {
	if s.Weather == nil {
		return WeatherObservation{Humidity: 100}
	}
	return *s.Weather
}

// rain24h sums rainfall over the trailing 24 samples of the historical series.
func (s SensorSnapshot) rain24h() float64 {
	samples := s.History
	if len(samples) > 24 {
		samples = samples[len(samples)-24:]
	}
	var total float64
	for _, sample := range samples {
		total += sample.Rainfall
	}
	return total
}

// ComputeChanges derives rate-of-change deltas from an hourly historical
// series, for snapshot providers that do not precompute them. Windows longer
// than the series are left at zero.
func ComputeChanges(history []WeatherSample) WeatherChanges {
	var c WeatherChanges
	if len(history) < 2 {
		return c
	}
	recent := history[len(history)-1]

	delta := func(window int) (WeatherSample, bool) {
		idx := len(history) - 1 - window
		if idx < 0 {
			return WeatherSample{}, false
		}
		return history[idx], true
	}

	if past, ok := delta(1); ok {
		c.TempChange1h = recent.Temperature - past.Temperature
		c.PressureChange1h = recent.Pressure - past.Pressure
		c.HumidityChange1h = recent.Humidity - past.Humidity
		c.WindChange1h = recent.WindSpeed - past.WindSpeed
	}
	if past, ok := delta(3); ok {
		c.TempChange3h = recent.Temperature - past.Temperature
		c.PressureChange3h = recent.Pressure - past.Pressure
		c.HumidityChange3h = recent.Humidity - past.Humidity
		c.WindChange3h = recent.WindSpeed - past.WindSpeed
	}
	if past, ok := delta(6); ok {
		c.TempChange6h = recent.Temperature - past.Temperature
		c.PressureChange6h = recent.Pressure - past.Pressure
	}
	if past, ok := delta(12); ok {
		c.TempChange12h = recent.Temperature - past.Temperature
		c.PressureChange12h = recent.Pressure - past.Pressure
	}
	return c
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
