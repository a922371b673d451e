package city

// Coverage holds one strategy's adoption fractions, indexed [category][measure]
// with categories in scenario order and measures in catalog order. Entries for
// measures that do not apply to a category stay 0.
type Coverage [][]float64

// NewCoverage returns an all-zero coverage sized for the given dimensions.
func NewCoverage(categories, measures int) Coverage {
	cov := make(Coverage, categories)
	for i := range cov {
		cov[i] = make([]float64, measures)
	}
	return cov
}

// Clone returns a deep copy.
func (c Coverage) Clone() Coverage {
	out := make(Coverage, len(c))
	for i, row := range c {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Scale multiplies every entry of category i by ratio. Used for dilution.
func (c Coverage) Scale(i int, ratio float64) {
	for m := range c[i] {
		c[i][m] *= ratio
	}
}
