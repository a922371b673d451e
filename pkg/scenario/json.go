package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/HatiCode/retrofit/pkg/budget"
	"github.com/HatiCode/retrofit/pkg/city"
)

// ParseJSON decodes a scenario document. Fields that are absent keep the
// value from city.DefaultScenario; a present categories or measures array
// replaces the default list entirely.
//
// budget may be either an object or the compact "base+increment@tariff"
// string accepted by budget.ParseSchedule.
func ParseJSON(data []byte) (city.Scenario, error) {
	return ParseJSONAt(data, "")
}

// ParseJSONAt is ParseJSON applied to the sub-document at gjson path root.
func ParseJSONAt(data []byte, root string) (city.Scenario, error) {
	if !gjson.ValidBytes(data) {
		return city.Scenario{}, errors.New("invalid JSON document")
	}

	doc := gjson.ParseBytes(data)
	if root != "" {
		doc = doc.Get(root)
		if !doc.Exists() {
			return city.Scenario{}, fmt.Errorf("path %q not found in document", root)
		}
	}
	if !doc.IsObject() {
		return city.Scenario{}, errors.New("scenario must be a JSON object")
	}

	s := city.DefaultScenario()

	if v := doc.Get("name"); v.Exists() {
		s.Name = v.String()
	}
	if v := doc.Get("horizon"); v.Exists() {
		n, err := intField(v, "horizon")
		if err != nil {
			return city.Scenario{}, err
		}
		s.Horizon = n
	}
	if v := doc.Get("emissionFactor"); v.Exists() {
		f, err := floatField(v, "emissionFactor")
		if err != nil {
			return city.Scenario{}, err
		}
		s.EmissionFactor = f
	}
	if v := doc.Get("maxSearchSpace"); v.Exists() {
		n, err := intField(v, "maxSearchSpace")
		if err != nil {
			return city.Scenario{}, err
		}
		s.MaxSearchSpace = n
	}
	if v := doc.Get("maxBudgetUnits"); v.Exists() {
		n, err := intField(v, "maxBudgetUnits")
		if err != nil {
			return city.Scenario{}, err
		}
		s.MaxBudgetUnits = n
	}
	if v := doc.Get("parallel"); v.Exists() {
		s.Parallel = v.Bool()
	}

	if v := doc.Get("budget"); v.Exists() {
		schedule, err := parseBudget(v, s.Budget)
		if err != nil {
			return city.Scenario{}, err
		}
		s.Budget = schedule
	}

	if v := doc.Get("categories"); v.Exists() {
		if !v.IsArray() {
			return city.Scenario{}, errors.New("categories must be an array")
		}
		s.Categories = nil
		for i, c := range v.Array() {
			category, err := parseCategory(c)
			if err != nil {
				return city.Scenario{}, fmt.Errorf("categories[%d]: %w", i, err)
			}
			s.Categories = append(s.Categories, category)
		}
	}

	if v := doc.Get("measures"); v.Exists() {
		if !v.IsArray() {
			return city.Scenario{}, errors.New("measures must be an array")
		}
		s.Measures = nil
		for i, m := range v.Array() {
			measure, err := parseMeasure(m)
			if err != nil {
				return city.Scenario{}, fmt.Errorf("measures[%d]: %w", i, err)
			}
			s.Measures = append(s.Measures, measure)
		}
	}

	fillMeasureCategories(&s)
	return s, nil
}

func parseCategory(c gjson.Result) (city.Category, error) {
	if !c.IsObject() {
		return city.Category{}, errors.New("category must be an object")
	}
	category := city.Category{Name: c.Get("name").String()}
	var err error
	if category.MonthlyPerUnit, err = floatField(c.Get("monthlyPerUnit"), "monthlyPerUnit"); err != nil {
		return city.Category{}, err
	}
	if category.Units, err = intField(c.Get("units"), "units"); err != nil {
		return city.Category{}, err
	}
	if category.GrowthRate, err = floatField(c.Get("growthRate"), "growthRate"); err != nil {
		return city.Category{}, err
	}
	return category, nil
}

func parseMeasure(m gjson.Result) (city.Measure, error) {
	if !m.IsObject() {
		return city.Measure{}, errors.New("measure must be an object")
	}
	measure := city.Measure{Name: m.Get("name").String()}
	var err error
	if measure.Cost, err = intField(m.Get("cost"), "cost"); err != nil {
		return city.Measure{}, err
	}
	if measure.Effect, err = floatField(m.Get("effect"), "effect"); err != nil {
		return city.Measure{}, err
	}
	if measure.StepPercent, err = floatField(m.Get("stepPercent"), "stepPercent"); err != nil {
		return city.Measure{}, err
	}
	for _, name := range m.Get("categories").Array() {
		measure.Categories = append(measure.Categories, name.String())
	}
	return measure, nil
}

// intField reads a whole JSON number. Absent fields read as 0 and are left to
// scenario validation.
func intField(v gjson.Result, name string) (int, error) {
	if !v.Exists() {
		return 0, nil
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%s must be a number, got %s", name, v.Raw)
	}
	if v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a whole number, got %s", name, v.Raw)
	}
	return int(v.Num), nil
}

func floatField(v gjson.Result, name string) (float64, error) {
	if !v.Exists() {
		return 0, nil
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%s must be a number, got %s", name, v.Raw)
	}
	return v.Num, nil
}

func parseBudget(v gjson.Result, base budget.Schedule) (budget.Schedule, error) {
	switch {
	case v.Type == gjson.String:
		schedule, err := budget.ParseSchedule(v.String())
		if err != nil {
			return budget.Schedule{}, fmt.Errorf("invalid budget: %w", err)
		}
		return schedule, nil
	case v.Type == gjson.Number:
		return budget.Schedule{BasePerYear: v.Float()}, nil
	case v.IsObject():
		fields := []struct {
			name string
			dst  *float64
		}{
			{"basePerYear", &base.BasePerYear},
			{"annualIncrement", &base.AnnualIncrement},
			{"tariff", &base.Tariff},
		}
		for _, f := range fields {
			if r := v.Get(f.name); r.Exists() {
				n, err := floatField(r, "budget "+f.name)
				if err != nil {
					return budget.Schedule{}, err
				}
				*f.dst = n
			}
		}
		return base, nil
	default:
		return budget.Schedule{}, errors.New("budget must be an object, number or schedule string")
	}
}

// fillMeasureCategories makes a measure without a categories list apply to
// every category of the scenario.
func fillMeasureCategories(s *city.Scenario) {
	names := s.CategoryNames()
	for i := range s.Measures {
		if len(s.Measures[i].Categories) == 0 {
			s.Measures[i].Categories = append([]string(nil), names...)
		}
	}
}
