package city

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/HatiCode/retrofit/pkg/budget"
)

const (
	// DefaultHorizon is the number of simulated years when none is configured.
	DefaultHorizon = 10

	// DefaultEmissionFactor converts saved kWh into avoided kg CO2.
	DefaultEmissionFactor = 0.4

	// DefaultMaxSearchSpace bounds the worst-case leaf count of one category search.
	DefaultMaxSearchSpace = 10_000_000

	// DefaultMaxBudgetUnits bounds the integer budget a strategy may spend in one year.
	DefaultMaxBudgetUnits = 20_000
)

var (
	// ErrInvalidConfiguration is wrapped by every scenario validation failure.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrBudgetOverflow is returned when a strategy's yearly budget grows past
	// MaxBudgetUnits during a run, which only the tariff bonus can cause.
	ErrBudgetOverflow = errors.New("yearly budget exceeds limit")
)

// NameRegex matches valid scenario names. Names double as storage keys.
var NameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,251}[a-zA-Z0-9])?$`)

// Scenario is a complete simulation configuration.
type Scenario struct {
	Name           string          `json:"name" yaml:"name"`
	Categories     []Category      `json:"categories" yaml:"categories"`
	Measures       Catalog         `json:"measures" yaml:"measures"`
	Budget         budget.Schedule `json:"budget" yaml:"budget"`
	Horizon        int             `json:"horizon" yaml:"horizon"`
	EmissionFactor float64         `json:"emissionFactor" yaml:"emissionFactor"`

	// MaxSearchSpace caps the worst-case number of purchase combinations a single
	// category search may enumerate. Scenarios above it are rejected up front.
	MaxSearchSpace int `json:"maxSearchSpace" yaml:"maxSearchSpace"`

	// MaxBudgetUnits caps the integer budget one strategy may spend in a year.
	// The yearly split search is quadratic in it.
	MaxBudgetUnits int `json:"maxBudgetUnits" yaml:"maxBudgetUnits"`

	// Parallel evaluates strategies and category searches concurrently.
	// Results are identical either way.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// CategoryNames returns the category names in scenario order.
func (s Scenario) CategoryNames() []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}

// SearchSpace returns the worst-case leaf count of the purchase enumeration for
// category i: the product over applicable measures of (steps to saturate from
// zero coverage + 1). Budget limits can only shrink it. Saturates at math.MaxInt.
func (s Scenario) SearchSpace(i int) int {
	total := 1
	for _, m := range s.Measures.Applicable(s.Categories[i].Name) {
		branches := StepsToSaturate(0, s.Measures[m].StepPercent) + 1
		if total > math.MaxInt/branches {
			return math.MaxInt
		}
		total *= branches
	}
	return total
}

// Validate checks the scenario and reports the first problem found.
// The returned error wraps ErrInvalidConfiguration.
func (s Scenario) Validate() error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

func (s Scenario) validate() error {
	if s.Name != "" && !NameRegex.MatchString(s.Name) {
		return fmt.Errorf("invalid scenario name %q (must be alphanumeric with dash/underscore, 1-253 chars)", s.Name)
	}
	if s.Horizon <= 0 {
		return fmt.Errorf("horizon must be > 0, got %d", s.Horizon)
	}
	if !finite(s.EmissionFactor) || s.EmissionFactor < 0 {
		return fmt.Errorf("emissionFactor must be a non-negative number, got %v", s.EmissionFactor)
	}
	if err := s.Budget.Validate(); err != nil {
		return err
	}
	if len(s.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	if len(s.Measures) == 0 {
		return errors.New("measure catalog cannot be empty")
	}

	seen := make(map[string]bool, len(s.Categories))
	for i, c := range s.Categories {
		if c.Name == "" {
			return fmt.Errorf("category[%d]: name cannot be empty", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("category %q: duplicate name", c.Name)
		}
		seen[c.Name] = true
		if c.Units <= 0 {
			return fmt.Errorf("category %q: units must be > 0", c.Name)
		}
		if !finite(c.MonthlyPerUnit) || c.MonthlyPerUnit <= 0 {
			return fmt.Errorf("category %q: monthlyPerUnit must be > 0, got %v", c.Name, c.MonthlyPerUnit)
		}
		if !finite(c.GrowthRate) || c.GrowthRate < 0 {
			return fmt.Errorf("category %q: growthRate must be a non-negative number, got %v", c.Name, c.GrowthRate)
		}
	}

	measureNames := make(map[string]bool, len(s.Measures))
	for i, m := range s.Measures {
		if m.Name == "" {
			return fmt.Errorf("measure[%d]: name cannot be empty", i)
		}
		if measureNames[m.Name] {
			return fmt.Errorf("measure %q: duplicate name", m.Name)
		}
		measureNames[m.Name] = true
		if m.Cost <= 0 {
			return fmt.Errorf("measure %q: cost must be > 0", m.Name)
		}
		if !finite(m.Effect) || m.Effect <= 0 || m.Effect > 1 {
			return fmt.Errorf("measure %q: effect must be in (0,1], got %v", m.Name, m.Effect)
		}
		if !finite(m.StepPercent) || m.StepPercent <= 0 || m.StepPercent > 100 {
			return fmt.Errorf("measure %q: stepPercent must be in (0,100], got %v", m.Name, m.StepPercent)
		}
		for _, name := range m.Categories {
			if !seen[name] {
				return fmt.Errorf("measure %q: unknown category %q", m.Name, name)
			}
		}
	}

	if s.MaxSearchSpace <= 0 {
		return fmt.Errorf("maxSearchSpace must be > 0")
	}
	for i, c := range s.Categories {
		if n := s.SearchSpace(i); n > s.MaxSearchSpace {
			return fmt.Errorf("category %q: search space %d exceeds limit %d (reduce measures or enlarge steps)", c.Name, n, s.MaxSearchSpace)
		}
	}

	if s.MaxBudgetUnits <= 0 {
		return fmt.Errorf("maxBudgetUnits must be > 0")
	}
	if worst := s.WorstCaseBalance(); worst > float64(s.MaxBudgetUnits) {
		return fmt.Errorf("budget can accumulate to %.0f units, above limit %d (lower the budget or the horizon)", worst, s.MaxBudgetUnits)
	}

	return nil
}

// WorstCaseBalance returns the largest wallet balance any strategy can reach
// without the tariff bonus: every injection of the horizon, none of it spent.
func (s Scenario) WorstCaseBalance() float64 {
	h := float64(s.Horizon)
	return s.Budget.BasePerYear*h + s.Budget.AnnualIncrement*h*(h-1)/2
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
