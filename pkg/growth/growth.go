// Package growth advances building stock by one year and dilutes coverage
// accordingly: adoption already achieved stays constant in absolute terms, so
// its fraction of a larger population shrinks.
package growth

import "github.com/HatiCode/retrofit/pkg/city"

// Advance returns the categories one year later together with the per-category
// dilution ratio oldUnits/newUnits. Unit counts grow by integer truncation of
// units + units*rate. The input slice is not modified.
func Advance(categories []city.Category) ([]city.Category, []float64) {
	next := make([]city.Category, len(categories))
	ratios := make([]float64, len(categories))
	for i, c := range categories {
		grown := int(float64(c.Units) + float64(c.Units)*c.GrowthRate)
		if grown < c.Units {
			grown = c.Units
		}
		ratios[i] = 1
		if grown != 0 {
			ratios[i] = float64(c.Units) / float64(grown)
		}
		c.Units = grown
		next[i] = c
	}
	return next, ratios
}

// Dilute rescales every coverage row by its category's ratio. A ratio of 1
// leaves the row bit-for-bit unchanged.
func Dilute(cov city.Coverage, ratios []float64) {
	for i, r := range ratios {
		if r == 1 || i >= len(cov) {
			continue
		}
		cov.Scale(i, r)
	}
}
