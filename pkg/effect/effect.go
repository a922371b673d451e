// Package effect implements the diminishing-returns consumption model.
//
// Each applicable measure m retains (1 - effect_m * coverage_m) of the
// consumption, and the retained fractions multiply:
//
//	factor = Π (1 - effect_m * coverage_m)
//
// With effect and coverage in [0,1] the factor stays in [0,1], so savings can
// never exceed the baseline no matter how many measures are stacked.
package effect

import "github.com/HatiCode/retrofit/pkg/city"

// Factor returns the consumption multiplier for one category. coverage is the
// category's row of city.Coverage, indexed in catalog order. Measures that do
// not apply to category are ignored, so a category without applicable
// measures always yields 1.
func Factor(catalog city.Catalog, category string, coverage []float64) float64 {
	factor := 1.0
	for i, m := range catalog {
		if i >= len(coverage) || !m.AppliesTo(category) {
			continue
		}
		factor *= 1 - m.Effect*coverage[i]
	}
	return factor
}

// FactorOf computes the factor over an explicit measure index list. It is the
// inner loop of the optimizer, which pre-computes the applicable indices.
func FactorOf(catalog city.Catalog, applicable []int, coverage []float64) float64 {
	factor := 1.0
	for _, i := range applicable {
		factor *= 1 - catalog[i].Effect*coverage[i]
	}
	return factor
}

// Consumption returns baseline scaled by the category's factor.
func Consumption(baseline float64, catalog city.Catalog, category string, coverage []float64) float64 {
	return baseline * Factor(catalog, category, coverage)
}

// Total returns the summed post-intervention consumption of all categories.
func Total(categories []city.Category, catalog city.Catalog, cov city.Coverage) float64 {
	total := 0.0
	for i, c := range categories {
		total += Consumption(c.AnnualConsumption(), catalog, c.Name, cov[i])
	}
	return total
}
