package simulation

import (
	"context"

	"github.com/HatiCode/retrofit/pkg/budget"
	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/greedy"
	"github.com/HatiCode/retrofit/pkg/optimizer"
)

// Strategy names one allocation policy.
type Strategy string

// Strategy names in reporting order.
const (
	DynamicProgramming Strategy = "dp"
	GreedyROI          Strategy = "greedy-roi"
	GreedyMaxEffect    Strategy = "greedy-max-effect"
	GreedyCheapest     Strategy = "greedy-cheapest"
)

// Strategies lists every strategy in reporting order.
var Strategies = []Strategy{DynamicProgramming, GreedyROI, GreedyMaxEffect, GreedyCheapest}

// allocator spends one year's budget against a strategy's own coverage.
type allocator interface {
	allocate(ctx context.Context, categories []city.Category, cov city.Coverage, units int) (spent int, purchases []city.Purchase, leaves int, err error)
}

// state is everything one strategy owns. Nothing in it is shared with another
// strategy, so strategies can advance concurrently.
type state struct {
	strategy    Strategy
	alloc       allocator
	coverage    city.Coverage
	wallet      budget.Wallet
	lastSavings float64
	leaves      int
	history     []YearSnapshot
}

type dpAllocator struct {
	opt      *optimizer.Optimizer
	parallel bool
}

func (a dpAllocator) allocate(ctx context.Context, categories []city.Category, cov city.Coverage, units int) (int, []city.Purchase, int, error) {
	tables := make([]optimizer.Table, len(categories))
	errs := make([]error, len(categories))

	search := func(i int) {
		c := categories[i]
		tables[i], errs[i] = a.opt.BestAtMost(c.Name, c.AnnualConsumption(), cov[i], units)
	}
	if a.parallel {
		forEach(len(categories), search)
	} else {
		for i := range categories {
			if err := ctx.Err(); err != nil {
				return 0, nil, 0, err
			}
			search(i)
		}
	}

	leaves := 0
	for i, err := range errs {
		if err != nil {
			return 0, nil, 0, err
		}
		leaves += tables[i].Leaves
	}

	split, err := optimizer.AllocateContext(ctx, tables, units)
	if err != nil {
		return 0, nil, 0, err
	}
	spent, purchases := optimizer.Apply(a.opt.Catalog, tables, cov, split)
	return spent, purchases, leaves, nil
}

type greedyAllocator struct {
	g *greedy.Allocator
}

func (a greedyAllocator) allocate(_ context.Context, categories []city.Category, cov city.Coverage, units int) (int, []city.Purchase, int, error) {
	spent, purchases := a.g.Allocate(categories, cov, units)
	return spent, purchases, 0, nil
}

func newStates(s city.Scenario) []*state {
	opt := optimizer.New(s.Measures, s.MaxSearchSpace)
	states := make([]*state, 0, len(Strategies))
	for _, st := range Strategies {
		var a allocator
		switch st {
		case DynamicProgramming:
			a = dpAllocator{opt: opt, parallel: s.Parallel}
		default:
			v, err := greedy.ParseVariant(string(st))
			if err != nil {
				panic(err)
			}
			a = greedyAllocator{g: greedy.New(s.Measures, v)}
		}
		states = append(states, &state{
			strategy: st,
			alloc:    a,
			coverage: city.NewCoverage(len(s.Categories), len(s.Measures)),
		})
	}
	return states
}
