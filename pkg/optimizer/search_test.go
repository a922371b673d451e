package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HatiCode/retrofit/pkg/city"
)

// singleMeasure is the one-category, one-measure reference case:
// cost 10, effect 0.10, 50% steps, baseline 1000.
func singleMeasure() city.Catalog {
	return city.Catalog{
		{Name: "m", Cost: 10, Effect: 0.10, StepPercent: 50, Categories: []string{"a"}},
	}
}

func TestBestAtMost_SingleMeasure(t *testing.T) {
	o := New(singleMeasure(), 0)
	table, err := o.BestAtMost("a", 1000, []float64{0}, 30)
	require.NoError(t, err)
	require.Len(t, table.Entries, 31)
	require.Equal(t, 3, table.Leaves)

	for c := 0; c <= 9; c++ {
		e := table.At(c)
		require.Equal(t, 0.0, e.Saved, "c=%d", c)
		require.Equal(t, 0, e.Cost, "c=%d", c)
		require.Equal(t, []int{0}, e.Counts)
	}
	for c := 10; c <= 19; c++ {
		e := table.At(c)
		require.InDelta(t, 50, e.Saved, 1e-9, "c=%d", c)
		require.Equal(t, 10, e.Cost)
		require.Equal(t, []int{1}, e.Counts)
	}
	for c := 20; c <= 30; c++ {
		e := table.At(c)
		require.InDelta(t, 100, e.Saved, 1e-9, "c=%d", c)
		require.Equal(t, 20, e.Cost)
		require.Equal(t, []int{2}, e.Counts)
	}
}

func TestBestAtMost_PartialCoverage(t *testing.T) {
	// starting at 50% only one more step is possible
	o := New(singleMeasure(), 0)
	table, err := o.BestAtMost("a", 1000, []float64{0.5}, 40)
	require.NoError(t, err)

	e := table.At(40)
	require.Equal(t, 10, e.Cost)
	require.Equal(t, []int{1}, e.Counts)
	// factor 0.95 -> 0.90 on baseline 1000
	require.InDelta(t, 50, e.Saved, 1e-9)
}

func TestBestAtMost_Saturated(t *testing.T) {
	o := New(singleMeasure(), 0)
	table, err := o.BestAtMost("a", 1000, []float64{1}, 50)
	require.NoError(t, err)
	require.Equal(t, 1, table.Leaves)
	require.Equal(t, 0.0, table.At(50).Saved)
}

func TestBestAtMost_NoApplicableMeasures(t *testing.T) {
	o := New(singleMeasure(), 0)
	table, err := o.BestAtMost("other", 1000, []float64{0}, 25)
	require.NoError(t, err)
	require.Len(t, table.Entries, 26)
	for _, e := range table.Entries {
		require.Equal(t, 0.0, e.Saved)
		require.Equal(t, 0, e.Cost)
	}
}

func TestBestAtMost_ZeroBudget(t *testing.T) {
	o := New(city.DefaultScenario().Measures, 0)
	table, err := o.BestAtMost(city.Apartments, 1e6, make([]float64, 5), 0)
	require.NoError(t, err)
	require.Len(t, table.Entries, 1)
	require.Equal(t, 0.0, table.At(0).Saved)
}

func TestBestAtMost_Monotonic(t *testing.T) {
	s := city.DefaultScenario()
	o := New(s.Measures, 0)
	cov := []float64{0.2, 0, 0.55, 0.9, 0}
	table, err := o.BestAtMost(city.Apartments, s.Categories[0].AnnualConsumption(), cov, 120)
	require.NoError(t, err)

	for c := 1; c < len(table.Entries); c++ {
		require.GreaterOrEqual(t, table.Entries[c].Saved, table.Entries[c-1].Saved, "c=%d", c)
		require.LessOrEqual(t, table.Entries[c].Cost, c)
	}
}

func TestBestAtMost_MatchesBruteForce(t *testing.T) {
	catalog := city.Catalog{
		{Name: "x", Cost: 3, Effect: 0.2, StepPercent: 25, Categories: []string{"a"}},
		{Name: "y", Cost: 5, Effect: 0.4, StepPercent: 50, Categories: []string{"a"}},
	}
	o := New(catalog, 0)
	table, err := o.BestAtMost("a", 100, []float64{0, 0}, 20)
	require.NoError(t, err)

	for budget := 0; budget <= 20; budget++ {
		best := 0.0
		for kx := 0; kx <= 4; kx++ {
			for ky := 0; ky <= 2; ky++ {
				if kx*3+ky*5 > budget {
					continue
				}
				f := (1 - 0.2*float64(kx)*0.25) * (1 - 0.4*float64(ky)*0.5)
				if s := 100 * (1 - f); s > best {
					best = s
				}
			}
		}
		require.InDelta(t, best, table.At(budget).Saved, 1e-9, "budget=%d", budget)
	}
}

func TestBestAtMost_TieKeepsFirstDiscovered(t *testing.T) {
	// Two identical measures. (0,1) is enumerated before (1,0) because the
	// last measure turns fastest, so it keeps the cost-5 slot.
	catalog := city.Catalog{
		{Name: "first", Cost: 5, Effect: 0.1, StepPercent: 100, Categories: []string{"a"}},
		{Name: "second", Cost: 5, Effect: 0.1, StepPercent: 100, Categories: []string{"a"}},
	}
	o := New(catalog, 0)
	table, err := o.BestAtMost("a", 100, []float64{0, 0}, 5)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, table.At(5).Counts)
}

func TestBestAtMost_Overflow(t *testing.T) {
	s := city.DefaultScenario()
	o := New(s.Measures, 100)
	_, err := o.BestAtMost(city.Apartments, 1e6, make([]float64, 5), 1000)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSearchBudgetOverflow))

	var overflow *SearchBudgetOverflowError
	require.True(t, errors.As(err, &overflow))
	require.Equal(t, city.Apartments, overflow.Category)
	require.Equal(t, 100, overflow.Limit)
	require.Greater(t, overflow.Estimate, 100)
}

func TestEstimate_BoundsLeaves(t *testing.T) {
	s := city.DefaultScenario()
	o := New(s.Measures, 0)
	cov := []float64{0.5, 0, 0, 0.7, 0}
	table, err := o.BestAtMost(city.PrivateHouses, 1e6, cov, 60)
	require.NoError(t, err)
	require.LessOrEqual(t, table.Leaves, o.Estimate(city.PrivateHouses, cov, 60))
}

func TestTableAt_OutOfRange(t *testing.T) {
	require.Equal(t, Entry{}, Table{}.At(3))
	tbl := Table{Entries: []Entry{{Saved: 1}, {Saved: 2}}}
	require.Equal(t, 2.0, tbl.At(10).Saved)
	require.Equal(t, Entry{}, tbl.At(-1))
}
