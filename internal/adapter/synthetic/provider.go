package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sdars/hazard-engine/internal/domain"
)

// Provider generates plausible sensor snapshots without network collectors,
// for development and demo deployments. Output is deterministic per location
// and hour, so repeated sweeps within the hour see the same conditions.
type Provider struct {
	logger *slog.Logger
}

func NewProvider(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

// Snapshot synthesizes current satellite and weather signals for a location.
func (p *Provider) Snapshot(_ context.Context, lat, lon float64) (domain.SensorSnapshot, error) {
	rng := rand.New(rand.NewSource(seed(lat, lon, time.Now().UTC())))

	baseTemp := 18 + rng.Float64()*16 // 18-34°C
	weather := domain.WeatherObservation{
		Temperature: round1(baseTemp),
		Humidity:    round1(30 + rng.Float64()*60),
		WindSpeed:   round1(rng.Float64() * 30),
		Pressure:    round1(995 + rng.Float64()*25),
		Clouds:      round1(rng.Float64() * 100),
		Rain1h:      round1(rng.Float64() * 5),
		Visibility:  10000,
	}

	history := make([]domain.WeatherSample, 24)
	for i := range history {
		history[i] = domain.WeatherSample{
			Timestamp:   time.Now().UTC().Add(-time.Duration(24-i) * time.Hour),
			Temperature: round1(baseTemp + rng.Float64()*4 - 2),
			Pressure:    round1(weather.Pressure + rng.Float64()*6 - 3),
			Humidity:    round1(weather.Humidity + rng.Float64()*10 - 5),
			WindSpeed:   round1(weather.WindSpeed + rng.Float64()*8 - 4),
			Rainfall:    round1(rng.Float64() * 3),
		}
	}

	thermalMax := weather.Temperature + 4 + rng.Float64()*10
	hotspots := 0
	if rng.Float64() < 0.05 {
		// Rare thermal anomaly so demo deployments occasionally alert.
		thermalMax += 20
		hotspots = 1 + rng.Intn(20)
	}

	quality := domain.QualityRealSignal
	if rng.Float64() < 0.03 {
		quality = domain.QualityZeroSignal
	}

	snap := domain.SensorSnapshot{
		Location: domain.Geo{Lat: lat, Lon: lon},
		Satellite: &domain.SatelliteAnalysis{
			Thermal: domain.ThermalStats{
				Mean:              round1(weather.Temperature + 2),
				Max:               round1(thermalMax),
				Std:               round1(2 + rng.Float64()*6),
				HotspotCount:      hotspots,
				HotspotPercentage: round1(float64(hotspots) * 0.12),
			},
			NDVI:        indexSeries(rng, 0.2, 0.7),
			NDWI:        indexSeries(rng, -0.2, 0.3),
			DataQuality: quality,
		},
		Weather: &weather,
		History: history,
	}
	snap.Changes = domain.ComputeChanges(history)
	return snap, nil
}

// Scenario returns a canned snapshot exercising one hazard end to end.
// Recognized names are fire, flood, cyclone, blackout, and quiet.
func Scenario(name string) (domain.SensorSnapshot, error) {
	switch name {
	case "fire":
		return domain.SensorSnapshot{
			Satellite: &domain.SatelliteAnalysis{
				Thermal: domain.ThermalStats{
					Mean:              32,
					Max:               58,
					Std:               8,
					HotspotCount:      15,
					HotspotPercentage: 2.5,
				},
				NDVI:        []float64{0.15},
				NDWI:        []float64{0.05},
				DataQuality: domain.QualityRealSignal,
			},
			Weather: &domain.WeatherObservation{Temperature: 38, Humidity: 25, WindSpeed: 22, Pressure: 1010, Clouds: 15},
		}, nil
	case "blackout":
		snap, _ := Scenario("fire")
		snap.Satellite.DataQuality = domain.QualityZeroSignal
		return snap, nil
	case "flood":
		history := make([]domain.WeatherSample, 24)
		for i := range history {
			history[i].Rainfall = 6
		}
		return domain.SensorSnapshot{
			Satellite: &domain.SatelliteAnalysis{NDWI: []float64{0.45}, DataQuality: domain.QualityRealSignal},
			Weather:   &domain.WeatherObservation{Temperature: 26, Humidity: 90, Rain1h: 50, Pressure: 1002},
			History:   history,
		}, nil
	case "cyclone":
		return domain.SensorSnapshot{
			Weather: &domain.WeatherObservation{Temperature: 28, Humidity: 85, WindSpeed: 45, Pressure: 985, Clouds: 100},
			Changes: domain.WeatherChanges{PressureChange12h: -20},
		}, nil
	case "quiet":
		return domain.SensorSnapshot{
			Satellite: &domain.SatelliteAnalysis{
				Thermal:     domain.ThermalStats{Mean: 22, Max: 27, Std: 2},
				NDVI:        []float64{0.6},
				DataQuality: domain.QualityRealSignal,
			},
			Weather: &domain.WeatherObservation{Temperature: 22, Humidity: 60, WindSpeed: 8, Pressure: 1015, Clouds: 20},
		}, nil
	default:
		return domain.SensorSnapshot{}, fmt.Errorf("unknown scenario %q", name)
	}
}

func seed(lat, lon float64, now time.Time) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.3f|%.3f|%s", lat, lon, now.Format("2006010215"))
	return int64(h.Sum64())
}

func indexSeries(rng *rand.Rand, lo, hi float64) []float64 {
	out := make([]float64, 4)
	for i := range out {
		out[i] = round2(lo + rng.Float64()*(hi-lo))
	}
	return out
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
