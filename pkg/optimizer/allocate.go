package optimizer

import (
	"context"

	"github.com/HatiCode/retrofit/pkg/city"
)

// cancelCheckInterval is how many splits Allocate evaluates between context checks.
const cancelCheckInterval = 4096

// Split is a division of the shared budget across categories.
type Split struct {
	// Limits holds the spend ceiling given to each category, in table order.
	Limits []int

	// Saved is the summed best-at-most saving over all categories.
	Saved float64
}

// Allocate finds the split of budget across tables that maximizes the total
// saving. Ceilings for all but the last category are enumerated in ascending
// lexicographic order and the last category receives the remainder, which is
// optimal because every table is non-decreasing. The first split reaching the
// maximum wins. For three tables this is the O(budget²) double loop.
func Allocate(tables []Table, budget int) Split {
	split, _ := AllocateContext(context.Background(), tables, budget)
	return split
}

// AllocateContext is Allocate with cancellation. It returns ctx.Err() as soon
// as ctx is done, checked every few thousand splits.
func AllocateContext(ctx context.Context, tables []Table, budget int) (Split, error) {
	n := len(tables)
	if n == 0 {
		return Split{}, nil
	}
	if budget < 0 {
		budget = 0
	}

	limits := make([]int, n)
	best := Split{Limits: make([]int, n)}
	first := true
	used := 0

	for iter := 1; ; iter++ {
		if iter%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Split{}, err
			}
		}
		limits[n-1] = budget - used

		total := 0.0
		for i, t := range tables {
			total += t.At(limits[i]).Saved
		}
		if first || total > best.Saved {
			copy(best.Limits, limits)
			best.Saved = total
			first = false
		}

		d := n - 2
		for d >= 0 {
			if used < budget {
				limits[d]++
				used++
				break
			}
			used -= limits[d]
			limits[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}

	return best, nil
}

// Apply commits split: for each category it adds the purchases stored at the
// split's table entry to cov and returns the exact amount spent, which may be
// below the split total. tables and categories share the same order as cov.
func Apply(catalog city.Catalog, tables []Table, cov city.Coverage, split Split) (int, []city.Purchase) {
	spent := 0
	var purchases []city.Purchase
	for i, t := range tables {
		e := t.At(split.Limits[i])
		for m, k := range e.Counts {
			if k == 0 {
				continue
			}
			meas := catalog[m]
			cov[i][m] = city.AddSteps(cov[i][m], meas.StepPercent, k)
			purchases = append(purchases, city.Purchase{
				Category: t.Category,
				Measure:  meas.Name,
				Count:    k,
				Cost:     k * meas.Cost,
			})
		}
		spent += e.Cost
	}
	return spent, purchases
}
