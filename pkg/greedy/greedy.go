// Package greedy implements the incremental baseline allocators.
//
// Each year a greedy allocator repeatedly buys the single best-scoring step
// among all (category, measure) pairs that are unsaturated, affordable and
// still reduce consumption. Scoring is selected by Variant.
package greedy

import (
	"fmt"

	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/effect"
)

// Variant selects the scoring rule.
type Variant int

const (
	// ROI scores a step by saved kWh per budget unit.
	ROI Variant = iota
	// MaxEffect scores a step by saved kWh.
	MaxEffect
	// Cheapest prefers the lowest-cost step.
	Cheapest
)

// Variants lists every variant in reporting order.
var Variants = []Variant{ROI, MaxEffect, Cheapest}

var variantNames = [...]string{
	ROI:       "greedy-roi",
	MaxEffect: "greedy-max-effect",
	Cheapest:  "greedy-cheapest",
}

var scoreTable = [...]func(marginal float64, cost int) float64{
	ROI:       func(marginal float64, cost int) float64 { return marginal / float64(cost) },
	MaxEffect: func(marginal float64, _ int) float64 { return marginal },
	Cheapest:  func(_ float64, cost int) float64 { return -float64(cost) },
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("greedy-unknown(%d)", int(v))
	}
	return variantNames[v]
}

// Score rates one candidate step.
func (v Variant) Score(marginal float64, cost int) float64 {
	return scoreTable[v](marginal, cost)
}

// ParseVariant maps a strategy name back to its variant.
func ParseVariant(s string) (Variant, error) {
	for i, name := range variantNames {
		if name == s {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown greedy variant %q (must be greedy-roi, greedy-max-effect, or greedy-cheapest)", s)
}

// Allocator runs one variant against a fixed catalog.
type Allocator struct {
	Catalog city.Catalog
	Variant Variant
}

// New returns an allocator for the given variant.
func New(catalog city.Catalog, v Variant) *Allocator {
	return &Allocator{Catalog: catalog, Variant: v}
}

// Allocate spends up to budget on single steps, updating cov in place, and
// returns the amount spent with the purchases aggregated per pair in order of
// first purchase. Candidates are scanned by category then catalog order and a
// later candidate must score strictly higher to replace the current pick.
func (a *Allocator) Allocate(categories []city.Category, cov city.Coverage, budget int) (int, []city.Purchase) {
	apps := make([][]int, len(categories))
	baselines := make([]float64, len(categories))
	for i, c := range categories {
		apps[i] = a.Catalog.Applicable(c.Name)
		baselines[i] = c.AnnualConsumption()
	}

	remaining := budget
	spent := 0
	var purchases []city.Purchase
	index := make(map[[2]int]int)

	for {
		bestCat, bestMeas := -1, -1
		bestScore := 0.0

		for i := range categories {
			for _, m := range apps[i] {
				meas := a.Catalog[m]
				if city.Saturated(cov[i][m]) || meas.Cost > remaining {
					continue
				}
				marginal := a.marginal(apps[i], cov[i], m, baselines[i])
				if marginal <= 0 {
					continue
				}
				score := a.Variant.Score(marginal, meas.Cost)
				if bestCat < 0 || score > bestScore {
					bestCat, bestMeas, bestScore = i, m, score
				}
			}
		}

		if bestCat < 0 {
			break
		}

		meas := a.Catalog[bestMeas]
		cov[bestCat][bestMeas] = city.AddSteps(cov[bestCat][bestMeas], meas.StepPercent, 1)
		remaining -= meas.Cost
		spent += meas.Cost

		key := [2]int{bestCat, bestMeas}
		if p, ok := index[key]; ok {
			purchases[p].Count++
			purchases[p].Cost += meas.Cost
		} else {
			index[key] = len(purchases)
			purchases = append(purchases, city.Purchase{
				Category: categories[bestCat].Name,
				Measure:  meas.Name,
				Count:    1,
				Cost:     meas.Cost,
			})
		}
	}

	return spent, purchases
}

// marginal is the consumption drop from one more step of measure m.
func (a *Allocator) marginal(apps []int, row []float64, m int, baseline float64) float64 {
	before := effect.FactorOf(a.Catalog, apps, row)
	old := row[m]
	row[m] = city.AddSteps(old, a.Catalog[m].StepPercent, 1)
	after := effect.FactorOf(a.Catalog, apps, row)
	row[m] = old
	return baseline * (before - after)
}
