package city

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/HatiCode/retrofit/pkg/budget"
)

func TestDefaultScenario_Valid(t *testing.T) {
	s := DefaultScenario()
	if err := s.Validate(); err != nil {
		t.Fatalf("default scenario invalid: %v", err)
	}
	if got := s.SearchSpace(0); got != 11*11*11*11*11 {
		t.Errorf("SearchSpace(0) = %d, want %d", got, 11*11*11*11*11)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantMsg string
	}{
		{"empty catalog", func(s *Scenario) { s.Measures = nil }, "measure catalog cannot be empty"},
		{"zero cost", func(s *Scenario) { s.Measures[0].Cost = 0 }, "cost must be > 0"},
		{"negative cost", func(s *Scenario) { s.Measures[1].Cost = -5 }, "cost must be > 0"},
		{"zero effect", func(s *Scenario) { s.Measures[0].Effect = 0 }, "effect must be in (0,1]"},
		{"effect above one", func(s *Scenario) { s.Measures[0].Effect = 1.5 }, "effect must be in (0,1]"},
		{"zero step", func(s *Scenario) { s.Measures[0].StepPercent = 0 }, "stepPercent must be in (0,100]"},
		{"step above 100", func(s *Scenario) { s.Measures[0].StepPercent = 120 }, "stepPercent must be in (0,100]"},
		{"negative growth", func(s *Scenario) { s.Categories[0].GrowthRate = -0.1 }, "growthRate must be a non-negative number"},
		{"zero horizon", func(s *Scenario) { s.Horizon = 0 }, "horizon must be > 0"},
		{"zero units", func(s *Scenario) { s.Categories[1].Units = 0 }, "units must be > 0"},
		{"zero monthly", func(s *Scenario) { s.Categories[1].MonthlyPerUnit = 0 }, "monthlyPerUnit must be > 0"},
		{"no categories", func(s *Scenario) { s.Categories = nil }, "at least one category"},
		{"duplicate category", func(s *Scenario) { s.Categories[1].Name = s.Categories[0].Name }, "duplicate name"},
		{"duplicate measure", func(s *Scenario) { s.Measures[1].Name = s.Measures[0].Name }, "duplicate name"},
		{"unknown category", func(s *Scenario) { s.Measures[0].Categories = []string{"offices"} }, "unknown category"},
		{"negative budget", func(s *Scenario) { s.Budget.BasePerYear = -1 }, "basePerYear"},
		{"bad name", func(s *Scenario) { s.Name = "bad name!" }, "invalid scenario name"},
		{"NaN effect", func(s *Scenario) { s.Measures[2].Effect = math.NaN() }, "effect must be in (0,1]"},
		{"NaN step", func(s *Scenario) { s.Measures[0].StepPercent = math.NaN() }, "stepPercent must be in (0,100]"},
		{"infinite step", func(s *Scenario) { s.Measures[0].StepPercent = math.Inf(1) }, "stepPercent must be in (0,100]"},
		{"NaN monthly", func(s *Scenario) { s.Categories[0].MonthlyPerUnit = math.NaN() }, "monthlyPerUnit must be > 0"},
		{"infinite monthly", func(s *Scenario) { s.Categories[0].MonthlyPerUnit = math.Inf(1) }, "monthlyPerUnit must be > 0"},
		{"NaN growth", func(s *Scenario) { s.Categories[2].GrowthRate = math.NaN() }, "growthRate"},
		{"NaN emission factor", func(s *Scenario) { s.EmissionFactor = math.NaN() }, "emissionFactor"},
		{"negative emission factor", func(s *Scenario) { s.EmissionFactor = -0.1 }, "emissionFactor"},
		{"NaN budget", func(s *Scenario) { s.Budget.BasePerYear = math.NaN() }, "basePerYear"},
		{"infinite increment", func(s *Scenario) { s.Budget.AnnualIncrement = math.Inf(1) }, "annualIncrement"},
		{"zero search limit", func(s *Scenario) { s.MaxSearchSpace = 0 }, "maxSearchSpace must be > 0"},
		{"zero budget limit", func(s *Scenario) { s.MaxBudgetUnits = 0 }, "maxBudgetUnits must be > 0"},
		{"budget too large", func(s *Scenario) { s.Budget.BasePerYear = 40000; s.Horizon = 1 }, "above limit"},
		{"budget accumulates past limit", func(s *Scenario) {
			s.Budget.BasePerYear = 1000
			s.Budget.AnnualIncrement = 500
		}, "above limit"},
		{"search space", func(s *Scenario) {
			for i := range s.Measures {
				s.Measures[i].StepPercent = 1
			}
		}, "exceeds limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScenario()
			tt.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error %v does not wrap ErrInvalidConfiguration", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_ExplicitZeroes(t *testing.T) {
	s := DefaultScenario()
	s.EmissionFactor = 0
	s.Budget = budget.Schedule{}
	if err := s.Validate(); err != nil {
		t.Fatalf("zero emission factor and budget should be valid: %v", err)
	}
}

func TestWorstCaseBalance(t *testing.T) {
	s := DefaultScenario()
	s.Horizon = 4
	s.Budget = budget.Schedule{BasePerYear: 100, AnnualIncrement: 10, Tariff: 1}

	// 100 + 110 + 120 + 130; the tariff bonus is not predictable up front
	if got := s.WorstCaseBalance(); got != 460 {
		t.Errorf("WorstCaseBalance() = %v, want 460", got)
	}
}

func TestNameRegex(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"default", true},
		{"small-town_2", true},
		{"a", true},
		{"-leading", false},
		{"trailing-", false},
		{"has space", false},
		{"colon:name", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := NameRegex.MatchString(tt.name); got != tt.want {
			t.Errorf("NameRegex.MatchString(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSearchSpace_Saturates(t *testing.T) {
	s := DefaultScenario()
	s.Measures = nil
	for i := 0; i < 40; i++ {
		s.Measures = append(s.Measures, Measure{
			Name: "m", Cost: 1, Effect: 0.1, StepPercent: 1,
			Categories: []string{Apartments},
		})
	}
	if got := s.SearchSpace(0); got != math.MaxInt {
		t.Errorf("SearchSpace() = %d, want saturation at MaxInt", got)
	}
	// categories without applicable measures have a single (empty) combination
	if got := s.SearchSpace(1); got != 1 {
		t.Errorf("SearchSpace(1) = %d, want 1", got)
	}
}
