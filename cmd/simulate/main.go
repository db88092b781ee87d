// Command simulate runs canned sensor scenarios through the actual fusion
// ensemble and prints the resulting prediction bundles. It uses the real
// domain package so the output matches engine behavior, which makes it handy
// both for demos and for updating pinned test assertions.
//
// Usage:
//
//	go run ./cmd/simulate -scenario fire
//	go run ./cmd/simulate -all
//	go run ./cmd/simulate -lat 19.076 -lon 72.8777
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sdars/hazard-engine/internal/adapter/synthetic"
	"github.com/sdars/hazard-engine/internal/domain"
)

var scenarios = []string{"fire", "blackout", "flood", "cyclone", "quiet"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	scenario := flag.String("scenario", "", "canned scenario to score (fire, blackout, flood, cyclone, quiet)")
	all := flag.Bool("all", false, "score every canned scenario")
	lat := flag.Float64("lat", 0, "sample the synthetic provider at this latitude")
	lon := flag.Float64("lon", 0, "sample the synthetic provider at this longitude")
	flag.Parse()

	// Fix the clock so repeated runs produce identical timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	orchestrator := domain.NewOrchestrator()

	switch {
	case *all:
		for _, name := range scenarios {
			if err := scoreScenario(orchestrator, name); err != nil {
				return err
			}
		}
		return nil
	case *scenario != "":
		return scoreScenario(orchestrator, *scenario)
	case *lat != 0 || *lon != 0:
		return scoreLocation(orchestrator, *lat, *lon)
	default:
		flag.Usage()
		return fmt.Errorf("one of -scenario, -all, or -lat/-lon is required")
	}
}

func scoreScenario(orchestrator *domain.Orchestrator, name string) error {
	snap, err := synthetic.Scenario(name)
	if err != nil {
		return err
	}
	bundle := orchestrator.Predict(snap)
	return printBundle(name, bundle)
}

func scoreLocation(orchestrator *domain.Orchestrator, lat, lon float64) error {
	provider := synthetic.NewProvider(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	snap, err := provider.Snapshot(context.Background(), lat, lon)
	if err != nil {
		return err
	}
	bundle := orchestrator.Predict(snap)
	return printBundle(fmt.Sprintf("%.3f,%.3f", lat, lon), bundle)
}

func printBundle(label string, bundle domain.PredictionBundle) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	fmt.Printf("=== %s ===\n%s\n", label, data)

	primary := bundle.Assessment(bundle.PrimaryThreat)
	fmt.Printf("primary: %s %s (%.0f%% confidence)\n", bundle.PrimaryThreat, bundle.OverallRiskLevel, primary.Confidence*100)
	for _, reason := range primary.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	fmt.Println()
	return nil
}
