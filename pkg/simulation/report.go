package simulation

import (
	"cmp"
	"slices"
	"time"

	"github.com/HatiCode/retrofit/pkg/city"
)

// Report is the complete output of one run.
type Report struct {
	RunID          string        `json:"runId"`
	Scenario       string        `json:"scenario"`
	GeneratedAt    time.Time     `json:"generatedAt"`
	Duration       time.Duration `json:"-"`
	DurationMs     int64         `json:"durationMs"`
	Horizon        int           `json:"horizon"`
	EmissionFactor float64       `json:"emissionFactor"`

	// Baselines holds the no-intervention consumption per year.
	Baselines  []float64        `json:"baselines"`
	Strategies []StrategyResult `json:"strategies"`
	Ranking    []Rank           `json:"ranking"`

	// SearchLeaves counts the combinations evaluated by the exhaustive optimizer.
	SearchLeaves int `json:"searchLeaves"`
}

// StrategyResult is one strategy's history and horizon totals.
type StrategyResult struct {
	Strategy         Strategy       `json:"strategy"`
	History          []YearSnapshot `json:"history"`
	TotalSavings     float64        `json:"totalSavings"`
	TotalSpent       int            `json:"totalSpent"`
	FinalConsumption float64        `json:"finalConsumption"`
	EmissionsAvoided float64        `json:"emissionsAvoided"`
}

// Rank is one row of the horizon ranking.
type Rank struct {
	Position         int      `json:"position"`
	Strategy         Strategy `json:"strategy"`
	TotalSavings     float64  `json:"totalSavings"`
	EmissionsAvoided float64  `json:"emissionsAvoided"`
}

// Result returns the named strategy's result.
func (r Report) Result(s Strategy) (StrategyResult, bool) {
	for _, res := range r.Strategies {
		if res.Strategy == s {
			return res, true
		}
	}
	return StrategyResult{}, false
}

func buildReport(s city.Scenario, states []*state, baselines []float64) Report {
	r := Report{
		Scenario:       s.Name,
		Horizon:        s.Horizon,
		EmissionFactor: s.EmissionFactor,
		Baselines:      baselines,
	}

	for _, st := range states {
		res := StrategyResult{Strategy: st.strategy, History: st.history}
		for _, y := range st.history {
			res.TotalSavings += y.Savings
			res.TotalSpent += y.Spent
		}
		if n := len(st.history); n > 0 {
			res.FinalConsumption = st.history[n-1].Consumption
		}
		res.EmissionsAvoided = res.TotalSavings * s.EmissionFactor
		r.Strategies = append(r.Strategies, res)
		r.SearchLeaves += st.leaves
	}

	ranked := slices.Clone(r.Strategies)
	slices.SortStableFunc(ranked, func(a, b StrategyResult) int {
		return cmp.Compare(b.TotalSavings, a.TotalSavings)
	})
	for i, res := range ranked {
		r.Ranking = append(r.Ranking, Rank{
			Position:         i + 1,
			Strategy:         res.Strategy,
			TotalSavings:     res.TotalSavings,
			EmissionsAvoided: res.EmissionsAvoided,
		})
	}

	return r
}

// Action is a single step of one measure in one category, rated against the
// initial building stock.
type Action struct {
	Category string `json:"category"`
	Measure  string `json:"measure"`
	Cost     int    `json:"cost"`

	// Savings is the yearly kWh saved by one step: base·effect·step.
	Savings float64 `json:"savings"`

	// FullSavings is the yearly kWh saved at full coverage: base·effect.
	FullSavings float64 `json:"fullSavings"`

	// ROI is Savings per budget unit.
	ROI float64 `json:"roi"`
}

// TopActions ranks every applicable (category, measure) step by saved kWh per
// budget unit, best first, and returns at most n of them (all when n <= 0).
//
// Savings is reported per purchased step, so it is FullSavings scaled by the
// measure's step size. With equal step sizes across the catalog both figures
// give the same order; with mixed steps the ranking follows the per-step value.
func TopActions(s city.Scenario, n int) []Action {
	var actions []Action
	for _, c := range s.Categories {
		base := c.AnnualConsumption()
		for _, m := range s.Measures {
			if !m.AppliesTo(c.Name) {
				continue
			}
			full := base * m.Effect
			saved := full * m.Step()
			actions = append(actions, Action{
				Category:    c.Name,
				Measure:     m.Name,
				Cost:        m.Cost,
				Savings:     saved,
				FullSavings: full,
				ROI:         saved / float64(m.Cost),
			})
		}
	}
	slices.SortStableFunc(actions, func(a, b Action) int {
		return cmp.Compare(b.ROI, a.ROI)
	})
	if n > 0 && n < len(actions) {
		actions = actions[:n]
	}
	return actions
}
