package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/HatiCode/retrofit/pkg/budget"
	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/simulation"
)

func kwh(v float64) string {
	return humanize.Commaf(math.Round(v)) + " kWh"
}

func units(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func printReport(w io.Writer, r simulation.Report) {
	fmt.Fprintf(w, "Scenario %s (run %s, %d years, %s)\n\n", r.Scenario, r.RunID, r.Horizon, r.Duration.Round(time.Millisecond))

	for _, res := range r.Strategies {
		fmt.Fprintf(w, "Strategy %s\n", res.Strategy)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "YEAR\tAVAILABLE\tSPENT\tLEFTOVER\tCONSUMPTION\tSAVINGS\tPURCHASES")
		for _, y := range res.History {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
				y.Year,
				units(y.Available),
				y.Spent,
				units(y.Leftover),
				kwh(y.Consumption),
				kwh(y.Savings),
				y.Description,
			)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Ranking")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTRATEGY\tTOTAL SAVINGS\tCO2 AVOIDED")
	for _, rank := range r.Ranking {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			rank.Position,
			rank.Strategy,
			kwh(rank.TotalSavings),
			humanize.SIWithDigits(rank.EmissionsAvoided*1000, 2, "g"),
		)
	}
	tw.Flush()
}

func printValidation(w io.Writer, s city.Scenario) {
	fmt.Fprintf(w, "Scenario %s is valid\n", s.Name)
	fmt.Fprintf(w, "  categories:  %d\n", len(s.Categories))
	fmt.Fprintf(w, "  measures:    %d\n", len(s.Measures))
	fmt.Fprintf(w, "  horizon:     %d years\n", s.Horizon)
	fmt.Fprintf(w, "  budget:      %s (at most %s units accumulated, limit %s)\n",
		budget.FormatSchedule(s.Budget),
		humanize.Commaf(s.WorstCaseBalance()),
		humanize.Comma(int64(s.MaxBudgetUnits)),
	)
	for i, c := range s.Categories {
		fmt.Fprintf(w, "  %-18s %s units, baseline %s, search space %s\n",
			c.Name,
			humanize.Comma(int64(c.Units)),
			kwh(c.AnnualConsumption()),
			humanize.Comma(int64(s.SearchSpace(i))),
		)
	}
}

func printTop(w io.Writer, actions []simulation.Action) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMEASURE\tCATEGORY\tCOST\tSTEP SAVINGS\tFULL SAVINGS\tKWH PER UNIT")
	for i, a := range actions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i+1,
			a.Measure,
			a.Category,
			a.Cost,
			kwh(a.Savings),
			kwh(a.FullSavings),
			humanize.Commaf(math.Round(a.ROI)),
		)
	}
	tw.Flush()
}
