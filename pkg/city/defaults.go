package city

import "github.com/HatiCode/retrofit/pkg/budget"

// Default category names.
const (
	Apartments      = "apartments"
	PrivateHouses   = "private-houses"
	PublicBuildings = "public-buildings"
)

// DefaultScenario returns the reference city: three building categories, five
// measures applicable everywhere, and a 100-unit yearly budget over ten years.
func DefaultScenario() Scenario {
	all := []string{Apartments, PrivateHouses, PublicBuildings}
	measure := func(name string, cost int, effect float64) Measure {
		return Measure{
			Name:        name,
			Cost:        cost,
			Effect:      effect,
			StepPercent: 10,
			Categories:  append([]string(nil), all...),
		}
	}

	return Scenario{
		Name: "default",
		Categories: []Category{
			{Name: Apartments, Units: 40000, MonthlyPerUnit: 250, GrowthRate: 0.03},
			{Name: PrivateHouses, Units: 5000, MonthlyPerUnit: 400, GrowthRate: 0.02},
			{Name: PublicBuildings, Units: 300, MonthlyPerUnit: 3000, GrowthRate: 0.01},
		},
		Measures: Catalog{
			measure("led-lighting", 15, 0.08),
			measure("insulation", 25, 0.15),
			measure("solar-panels", 30, 0.20),
			measure("smart-meters", 10, 0.05),
			measure("smart-home", 6, 0.03),
		},
		Budget: budget.Schedule{
			BasePerYear:     100,
			AnnualIncrement: 0,
		},
		Horizon:        DefaultHorizon,
		EmissionFactor: DefaultEmissionFactor,
		MaxSearchSpace: DefaultMaxSearchSpace,
		MaxBudgetUnits: DefaultMaxBudgetUnits,
	}
}
