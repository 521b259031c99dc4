// Command validate checks a persisted alerts document against the invariants
// the alert store maintains: one alert per city, classifications that match
// the recorded temperature, newest-first ordering and a summary that
// partitions the collection. With -observations it also checks that every
// observation of a fixture is represented.
//
// Usage:
//
//	go run ./cmd/validate -state alerts.json
//	go run ./cmd/validate -state alerts.json -observations data/mock/observations.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	statePath := flag.String("state", "", "path to a persisted alerts state JSON document")
	obsPath := flag.String("observations", "", "optional observation fixture the state was built from")
	flag.Parse()

	if *statePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*statePath, *obsPath); code != 0 {
		os.Exit(code)
	}
}

func run(statePath, obsPath string) int {
	fmt.Println("=== Climate Alerts State Validation ===")
	fmt.Println()

	state, err := loadJSON[domain.AlertsState](statePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load state: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTiers(state.Alerts),
		validateUniqueness(state.Alerts),
		validateClassification(state.Alerts),
		validateOrdering(state),
		validateSummary(state.Alerts),
	}

	if obsPath != "" {
		observations, err := loadJSON[[]domain.Observation](obsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load observations: %v\n", err)
			return 1
		}
		phases = append(phases, validateCoverage(state.Alerts, observations))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Alerts: %d\n", len(state.Alerts))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}
