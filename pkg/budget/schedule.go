// Package budget models the renewing yearly budget: the injection schedule that
// adds money every year and the per-strategy wallet that carries the unspent
// remainder forward.
package budget

import (
	"errors"
	"fmt"
	"math"
)

// Schedule defines how much money is injected each year.
type Schedule struct {
	// BasePerYear is injected every year. Must be >= 0.
	BasePerYear float64 `json:"basePerYear" yaml:"basePerYear"`

	// AnnualIncrement is added per elapsed year: year N receives
	// BasePerYear + (N-1)*AnnualIncrement. Must be >= 0.
	AnnualIncrement float64 `json:"annualIncrement" yaml:"annualIncrement"`

	// Tariff converts the previous year's saved kWh into extra budget.
	// 0 disables the bonus. Must be >= 0.
	Tariff float64 `json:"tariff" yaml:"tariff"`
}

// Validate rejects negative, NaN or infinite schedule terms.
func (s Schedule) Validate() error {
	if s.BasePerYear < 0 || math.IsNaN(s.BasePerYear) || math.IsInf(s.BasePerYear, 0) {
		return errors.New("budget basePerYear must be a non-negative finite number")
	}
	if s.AnnualIncrement < 0 || math.IsNaN(s.AnnualIncrement) || math.IsInf(s.AnnualIncrement, 0) {
		return errors.New("budget annualIncrement must be a non-negative finite number")
	}
	if s.Tariff < 0 || math.IsNaN(s.Tariff) || math.IsInf(s.Tariff, 0) {
		return errors.New("budget tariff must be a non-negative finite number")
	}
	return nil
}

// Injection returns the amount added at the start of year (1-based).
// prevSavings is the strategy's saved kWh in the previous year and only
// matters when a tariff is configured.
func (s Schedule) Injection(year int, prevSavings float64) float64 {
	if year < 1 {
		year = 1
	}
	amount := s.BasePerYear + float64(year-1)*s.AnnualIncrement
	if s.Tariff > 0 && prevSavings > 0 {
		amount += prevSavings * s.Tariff
	}
	return amount
}

// unitEpsilon keeps 99.99999999 from rounding down to 99.
const unitEpsilon = 1e-9

// Wallet is one strategy's budget state. The zero value is an empty wallet.
type Wallet struct {
	balance float64
}

// Balance returns the money currently held, including fractional units.
func (w *Wallet) Balance() float64 {
	return w.balance
}

// Deposit adds amount to the wallet. Negative amounts are ignored.
func (w *Wallet) Deposit(amount float64) {
	if amount > 0 {
		w.balance += amount
	}
}

// Units returns the whole budget units available for purchases.
func (w *Wallet) Units() int {
	return floorUnits(w.balance)
}

// Spend deducts cost from the wallet.
func (w *Wallet) Spend(cost int) error {
	if cost < 0 {
		return fmt.Errorf("cannot spend negative amount %d", cost)
	}
	if cost > w.Units() {
		return fmt.Errorf("cannot spend %d: only %d units available", cost, w.Units())
	}
	w.balance -= float64(cost)
	if w.balance < 0 {
		w.balance = 0
	}
	return nil
}

func floorUnits(x float64) int {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}
	if x >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(x + unitEpsilon))
}
