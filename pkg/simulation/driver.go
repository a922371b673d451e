// Package simulation runs the multi-year comparison of allocation strategies.
//
// Every year the driver grows the building stock, dilutes each strategy's
// coverage, injects the year's budget and lets each strategy spend it:
//
//	grow → dilute → inject → allocate → snapshot
//
// The exhaustive optimizer and the three greedy variants each own their
// coverage and wallet; only the read-only scenario is shared.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/effect"
	"github.com/HatiCode/retrofit/pkg/growth"
)

// YearSnapshot is one strategy's outcome for one year.
type YearSnapshot struct {
	Year int `json:"year"`

	// Available is the wallet balance after the year's injection.
	Available float64 `json:"available"`
	Spent     int     `json:"spent"`
	Leftover  float64 `json:"leftover"`

	// Baseline is the no-intervention consumption of the year's building stock.
	Baseline    float64 `json:"baseline"`
	Consumption float64 `json:"consumption"`
	Savings     float64 `json:"savings"`

	Purchases   []city.Purchase `json:"purchases,omitempty"`
	Description string          `json:"description"`
}

// Driver runs one scenario.
type Driver struct {
	scenario city.Scenario
	logger   *slog.Logger
}

// New validates s and returns a driver for it.
func New(s city.Scenario, logger *slog.Logger) (*Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Driver{scenario: s, logger: logger}, nil
}

// Scenario returns the validated scenario.
func (d *Driver) Scenario() city.Scenario {
	return d.scenario
}

// Run simulates the full horizon from scratch. It only stops early when ctx is
// done, a category search overflows its leaf limit, or the tariff bonus pushes
// a yearly budget past MaxBudgetUnits.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	s := d.scenario

	categories := append([]city.Category(nil), s.Categories...)
	states := newStates(s)
	baselines := make([]float64, 0, s.Horizon)

	for year := 1; year <= s.Horizon; year++ {
		select {
		case <-ctx.Done():
			return Report{}, ctx.Err()
		default:
		}

		if year > 1 {
			var ratios []float64
			categories, ratios = growth.Advance(categories)
			for _, st := range states {
				growth.Dilute(st.coverage, ratios)
			}
		}

		baseline := 0.0
		for _, c := range categories {
			baseline += c.AnnualConsumption()
		}
		baselines = append(baselines, baseline)

		errs := make([]error, len(states))
		step := func(i int) {
			errs[i] = d.step(ctx, states[i], year, categories, baseline)
		}
		if s.Parallel {
			forEach(len(states), step)
		} else {
			for i := range states {
				step(i)
			}
		}
		for i, err := range errs {
			if err != nil {
				return Report{}, fmt.Errorf("year %d, strategy %s: %w", year, states[i].strategy, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		d.logger.Debug("simulated year",
			"scenario", s.Name,
			"year", year,
			"baseline_kwh", baseline,
		)
	}

	report := buildReport(s, states, baselines)
	report.RunID = uuid.NewString()
	report.GeneratedAt = time.Now().UTC()
	report.Duration = time.Since(start)
	report.DurationMs = report.Duration.Milliseconds()

	d.logger.Info("simulation complete",
		"scenario", s.Name,
		"run_id", report.RunID,
		"horizon", s.Horizon,
		"winner", report.Ranking[0].Strategy,
		"search_leaves", report.SearchLeaves,
		"total_ms", report.Duration.Milliseconds(),
	)

	return report, nil
}

// step advances one strategy by one year.
func (d *Driver) step(ctx context.Context, st *state, year int, categories []city.Category, baseline float64) error {
	st.wallet.Deposit(d.scenario.Budget.Injection(year, st.lastSavings))
	available := st.wallet.Balance()

	units := st.wallet.Units()
	if units > d.scenario.MaxBudgetUnits {
		return fmt.Errorf("%w: %d units available, limit %d", city.ErrBudgetOverflow, units, d.scenario.MaxBudgetUnits)
	}

	spent, purchases, leaves, err := st.alloc.allocate(ctx, categories, st.coverage, units)
	if err != nil {
		return err
	}
	if err := st.wallet.Spend(spent); err != nil {
		return fmt.Errorf("settle spend: %w", err)
	}
	st.leaves += leaves

	consumption := effect.Total(categories, d.scenario.Measures, st.coverage)
	savings := baseline - consumption
	st.lastSavings = savings

	st.history = append(st.history, YearSnapshot{
		Year:        year,
		Available:   available,
		Spent:       spent,
		Leftover:    st.wallet.Balance(),
		Baseline:    baseline,
		Consumption: consumption,
		Savings:     savings,
		Purchases:   purchases,
		Description: city.Describe(purchases),
	})
	return nil
}

// forEach runs fn(0..n-1) concurrently and waits for all of them.
func forEach(n int, fn func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			fn(i)
		}(i)
	}
	wg.Wait()
}
