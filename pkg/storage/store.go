// Package storage caches the latest simulation report per scenario so the
// planner can serve results without recomputing them.
//
// Two implementations are provided: MemoryStore for a single planner process
// and RedisStore for several planner instances sharing one cache. Both key
// reports by scenario name and keep only the most recent one.
package storage

import (
	"context"
	"fmt"

	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/simulation"
)

// Store keeps the most recent report for each scenario name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores report under report.Scenario, replacing any previous report.
	// It fails when the scenario name is not a valid storage key.
	Put(ctx context.Context, report simulation.Report) error

	// GetLatest returns the stored report for scenario. found is false, with a
	// nil error, when no report exists.
	GetLatest(ctx context.Context, scenario string) (report simulation.Report, found bool, err error)
}

// validateScenarioName applies the scenario naming rules of city.NameRegex,
// so every name a valid scenario can carry is also a valid storage key.
func validateScenarioName(name string) error {
	if name == "" {
		return fmt.Errorf("report scenario cannot be empty")
	}
	if !city.NameRegex.MatchString(name) {
		return fmt.Errorf("invalid scenario name %q: must be alphanumeric with dash/underscore, 1-253 chars", name)
	}
	return nil
}
