package tax

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Bracket is one rung of a progressive rate schedule. The rate applies to
// income between Threshold and the next bracket's threshold (or infinity
// for the last bracket). A schedule is ordered by ascending threshold.
type Bracket struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

// Sorted returns a copy of brackets ordered by ascending threshold.
func Sorted(brackets []Bracket) []Bracket {
	out := make([]Bracket, len(brackets))
	copy(out, brackets)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Threshold.LessThan(out[j].Threshold)
	})
	return out
}

// TaxOn accumulates progressive tax on income against a bracket schedule
// whose thresholds are scaled by inflationFactor. Income at or below the
// first threshold is untaxed by that schedule.
func TaxOn(income decimal.Decimal, brackets []Bracket, inflationFactor decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) || len(brackets) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	for i, b := range brackets {
		lower := b.Threshold.Mul(inflationFactor)
		upper := income
		if i+1 < len(brackets) {
			next := brackets[i+1].Threshold.Mul(inflationFactor)
			if next.LessThan(upper) {
				upper = next
			}
		}
		portion := upper.Sub(lower)
		if portion.GreaterThan(decimal.Zero) {
			total = total.Add(portion.Mul(b.Rate))
		}
	}
	return total
}

// FirstRate returns the lowest bracket's rate, or zero for an empty schedule.
func FirstRate(brackets []Bracket) decimal.Decimal {
	if len(brackets) == 0 {
		return decimal.Zero
	}
	return brackets[0].Rate
}
