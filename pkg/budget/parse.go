package budget

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSchedule parses a compact schedule notation.
//
// Examples:
//   - "100"               → base 100
//   - "100+10"            → base 100, +10 per year
//   - "100+10@0.0001"     → base 100, +10 per year, tariff 0.0001 per saved kWh
//
// Returns error if a term is not a number or is negative.
func ParseSchedule(s string) (Schedule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Schedule{}, fmt.Errorf("empty budget schedule")
	}

	var sched Schedule
	rest := s

	if at := strings.IndexByte(rest, '@'); at >= 0 {
		tariff, err := strconv.ParseFloat(strings.TrimSpace(rest[at+1:]), 64)
		if err != nil {
			return Schedule{}, fmt.Errorf("invalid tariff in %q: %w", s, err)
		}
		sched.Tariff = tariff
		rest = rest[:at]
	}

	base := rest
	if plus := strings.IndexByte(rest, '+'); plus >= 0 {
		inc, err := strconv.ParseFloat(strings.TrimSpace(rest[plus+1:]), 64)
		if err != nil {
			return Schedule{}, fmt.Errorf("invalid increment in %q: %w", s, err)
		}
		sched.AnnualIncrement = inc
		base = rest[:plus]
	}

	b, err := strconv.ParseFloat(strings.TrimSpace(base), 64)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid base in %q: %w", s, err)
	}
	sched.BasePerYear = b

	if err := sched.Validate(); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

// FormatSchedule renders s in the notation accepted by ParseSchedule.
//
// Examples:
//   - {100, 0, 0}       → "100"
//   - {100, 10, 0}      → "100+10"
//   - {100, 10, 0.001}  → "100+10@0.001"
func FormatSchedule(s Schedule) string {
	out := formatNumber(s.BasePerYear)
	if s.AnnualIncrement != 0 {
		out += "+" + formatNumber(s.AnnualIncrement)
	}
	if s.Tariff != 0 {
		out += "@" + formatNumber(s.Tariff)
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
