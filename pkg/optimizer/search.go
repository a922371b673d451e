// Package optimizer computes budget allocations by exhaustive search.
//
// For every category, BestAtMost enumerates all purchase-count combinations of
// the applicable measures and reduces them to a best-at-most-cost table:
// entry c holds the largest saving achievable while spending at most c. The
// tables are then combined by Allocate, which splits the shared budget across
// categories.
//
// The search is exponential in the number of applicable measures. It is only
// meant for small catalogs; callers bound it with Optimizer.MaxLeaves.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/effect"
)

// ErrSearchBudgetOverflow is wrapped by SearchBudgetOverflowError.
var ErrSearchBudgetOverflow = errors.New("search budget overflow")

// SearchBudgetOverflowError reports a category whose enumeration would exceed
// the configured leaf limit. The search is not started.
type SearchBudgetOverflowError struct {
	Category string
	Estimate int
	Limit    int
}

func (e *SearchBudgetOverflowError) Error() string {
	return fmt.Sprintf("category %q: search space %d exceeds limit %d", e.Category, e.Estimate, e.Limit)
}

func (e *SearchBudgetOverflowError) Unwrap() error {
	return ErrSearchBudgetOverflow
}

// Entry is one row of a best-at-most table.
type Entry struct {
	// Saved is the reduction of yearly consumption relative to the coverage the
	// search started from.
	Saved float64 `json:"saved"`

	// Cost is the exact cost of the winning combination, <= the row index.
	Cost int `json:"cost"`

	// Counts holds purchases per measure in catalog order. Shared between
	// rows; treat as read-only.
	Counts []int `json:"counts"`
}

// Table is the best-at-most-cost table of one category.
type Table struct {
	Category string
	Entries  []Entry

	// Leaves is the number of combinations evaluated to build the table.
	Leaves int
}

// At returns the entry for spend ceiling c. Ceilings past the end of the
// table return the last entry; an empty table returns the zero Entry.
func (t Table) At(c int) Entry {
	if len(t.Entries) == 0 || c < 0 {
		return Entry{}
	}
	if c >= len(t.Entries) {
		return t.Entries[len(t.Entries)-1]
	}
	return t.Entries[c]
}

// Optimizer runs per-category searches against a fixed catalog.
// It holds no mutable state and is safe for concurrent use.
type Optimizer struct {
	Catalog city.Catalog

	// MaxLeaves caps the estimated combination count of one search.
	// 0 disables the check.
	MaxLeaves int
}

// New returns an optimizer for catalog.
func New(catalog city.Catalog, maxLeaves int) *Optimizer {
	return &Optimizer{Catalog: catalog, MaxLeaves: maxLeaves}
}

// Estimate returns an upper bound on the leaves BestAtMost would visit.
func (o *Optimizer) Estimate(category string, coverage []float64, budget int) int {
	total := 1
	for _, m := range o.Catalog.Applicable(category) {
		branches := o.maxCount(m, coverage[m], budget) + 1
		if total > math.MaxInt/branches {
			return math.MaxInt
		}
		total *= branches
	}
	return total
}

// maxCount bounds the purchases of measure m: never past saturation, never
// past what the remaining budget affords.
func (o *Optimizer) maxCount(m int, cov float64, remaining int) int {
	meas := o.Catalog[m]
	n := city.StepsToSaturate(cov, meas.StepPercent)
	if afford := remaining / meas.Cost; afford < n {
		n = afford
	}
	if n < 0 {
		return 0
	}
	return n
}

// BestAtMost builds the best-at-most table for one category with indices
// 0..budget. baseline is the category's no-intervention consumption and
// coverage its current row in catalog order.
//
// Combinations are enumerated in lexicographic order of purchase counts, with
// measures in catalog order and counts ascending. For each exact cost the first
// combination reaching the maximum saving is kept, and the forward scan keeps
// the cheaper entry on ties, so the result is fully deterministic.
func (o *Optimizer) BestAtMost(category string, baseline float64, coverage []float64, budget int) (Table, error) {
	if budget < 0 {
		budget = 0
	}
	if o.MaxLeaves > 0 {
		if est := o.Estimate(category, coverage, budget); est > o.MaxLeaves {
			return Table{}, &SearchBudgetOverflowError{Category: category, Estimate: est, Limit: o.MaxLeaves}
		}
	}

	apps := o.Catalog.Applicable(category)
	n := len(apps)

	start := effect.FactorOf(o.Catalog, apps, coverage)
	trial := append([]float64(nil), coverage...)

	best := make([]Entry, budget+1)
	found := make([]bool, budget+1)

	counts := make([]int, n)
	cost := 0
	leaves := 0

	for {
		leaves++
		for d, m := range apps {
			trial[m] = city.AddSteps(coverage[m], o.Catalog[m].StepPercent, counts[d])
		}
		saved := baseline * (start - effect.FactorOf(o.Catalog, apps, trial))
		if !found[cost] || saved > best[cost].Saved {
			best[cost] = Entry{Saved: saved, Cost: cost, Counts: o.expand(apps, counts)}
			found[cost] = true
		}

		// Advance the odometer: the last measure turns fastest. Digits to the
		// right of d are zero when d is examined, so the affordability bound
		// only depends on the digits to its left.
		d := n - 1
		for d >= 0 {
			m := apps[d]
			c := o.Catalog[m].Cost
			others := cost - counts[d]*c
			if counts[d] < o.maxCount(m, coverage[m], budget-others) {
				counts[d]++
				cost += c
				break
			}
			cost = others
			counts[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}

	entries := make([]Entry, budget+1)
	entries[0] = best[0]
	for c := 1; c <= budget; c++ {
		entries[c] = entries[c-1]
		if found[c] && best[c].Saved > entries[c].Saved {
			entries[c] = best[c]
		}
	}

	return Table{Category: category, Entries: entries, Leaves: leaves}, nil
}

// expand converts per-applicable-measure counts into a catalog-indexed vector.
func (o *Optimizer) expand(apps []int, counts []int) []int {
	out := make([]int, len(o.Catalog))
	for d, m := range apps {
		out[m] = counts[d]
	}
	return out
}
