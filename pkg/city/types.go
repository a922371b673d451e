// Package city defines the shared, read-only inputs of a retrofit simulation
// (building categories, the measure catalog, the budget schedule) together with
// the per-strategy coverage state that every allocator mutates.
package city

import (
	"math"
	"slices"
)

// Category is a group of buildings with a common consumption profile.
type Category struct {
	// Name identifies the category and is referenced by Measure.Categories.
	Name string `json:"name" yaml:"name"`

	// MonthlyPerUnit is the average monthly consumption of one unit (kWh).
	MonthlyPerUnit float64 `json:"monthlyPerUnit" yaml:"monthlyPerUnit"`

	// Units is the current unit count. It only grows, once per year.
	Units int `json:"units" yaml:"units"`

	// GrowthRate is the yearly fractional increase of Units (0.03 = +3%).
	GrowthRate float64 `json:"growthRate" yaml:"growthRate"`
}

// AnnualConsumption returns the no-intervention yearly consumption of the category.
func (c Category) AnnualConsumption() float64 {
	return float64(c.Units) * c.MonthlyPerUnit * 12
}

// Measure is one purchasable efficiency investment.
type Measure struct {
	Name string `json:"name" yaml:"name"`

	// Cost is the price of one step in integer budget units. Must be > 0.
	Cost int `json:"cost" yaml:"cost"`

	// Effect is the consumption reduction at full coverage, in (0,1].
	Effect float64 `json:"effect" yaml:"effect"`

	// StepPercent is the coverage gained per purchased step, in (0,100].
	StepPercent float64 `json:"stepPercent" yaml:"stepPercent"`

	// Categories lists the category names this measure can be applied to.
	Categories []string `json:"categories" yaml:"categories"`
}

// AppliesTo reports whether the measure can be purchased for the named category.
func (m Measure) AppliesTo(category string) bool {
	return slices.Contains(m.Categories, category)
}

// Step returns the coverage fraction gained by one purchase.
func (m Measure) Step() float64 {
	return m.StepPercent / 100
}

// Catalog is the ordered measure list. Its order fixes enumeration order and
// therefore every tie-break in the allocators.
type Catalog []Measure

// Applicable returns the catalog indices of the measures that apply to category,
// in catalog order.
func (c Catalog) Applicable(category string) []int {
	var idx []int
	for i, m := range c {
		if m.AppliesTo(category) {
			idx = append(idx, i)
		}
	}
	return idx
}

// saturationEpsilon absorbs float drift from repeated step additions.
const saturationEpsilon = 1e-9

// Saturated reports whether a coverage fraction has reached 1.
func Saturated(cov float64) bool {
	return cov >= 1-saturationEpsilon
}

// StepsToSaturate returns how many purchases of a stepPercent-sized step are
// needed to take cov to full coverage. The count is rounded up, so the last
// step may overshoot and be clamped by AddSteps.
func StepsToSaturate(cov, stepPercent float64) int {
	if Saturated(cov) || stepPercent <= 0 {
		return 0
	}
	return int(math.Ceil((1-cov)*100/stepPercent - saturationEpsilon))
}

// AddSteps returns the coverage after k purchases, clamped to [0,1].
func AddSteps(cov, stepPercent float64, k int) float64 {
	next := cov + float64(k)*stepPercent/100
	if Saturated(next) {
		return 1
	}
	if next < 0 {
		return 0
	}
	return next
}
