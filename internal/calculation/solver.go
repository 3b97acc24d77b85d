package calculation

import (
	"github.com/shopspring/decimal"
)

// Solver bounds. Tax is not invertible in closed form, so the gross-up is
// found by bisection; a $1 residual is immaterial to the decision the
// projection informs.
var (
	solverTolerance = decimal.NewFromInt(1)
	solverCeiling   = decimal.NewFromInt(10_000_000)
	solverSpan      = decimal.NewFromInt(3)
)

const solverMaxIterations = 20

// SolveGrossWithdrawal finds the gross taxable withdrawal whose marginal
// tax — the tax and OAS-clawback delta it adds on top of currentTaxable —
// leaves exactly targetNet in hand. oasReceivable caps the clawback side
// of the marginal burden.
//
// Bisection runs over [targetNet, min(3×targetNet, $10M)]; net-in-hand is
// monotone in gross as long as the marginal rate stays under 100%. On
// non-convergence the midpoint's best estimate is returned rather than an
// error.
func (e *Engine) SolveGrossWithdrawal(targetNet, currentTaxable, oasReceivable decimal.Decimal, province string, inflationFactor decimal.Decimal, age int) (gross, marginalTax decimal.Decimal) {
	if targetNet.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}

	baseBurden := e.taxAndClawback(currentTaxable, oasReceivable, province, inflationFactor, age, decimal.Zero, decimal.Zero)
	marginal := func(g decimal.Decimal) decimal.Decimal {
		return e.taxAndClawback(currentTaxable.Add(g), oasReceivable, province, inflationFactor, age, decimal.Zero, decimal.Zero).Sub(baseBurden)
	}

	hi := targetNet.Mul(solverSpan)
	if hi.GreaterThan(solverCeiling) {
		hi = solverCeiling
	}

	gross = bisectIncreasing(func(g decimal.Decimal) decimal.Decimal {
		return g.Sub(marginal(g)).Sub(targetNet)
	}, targetNet, hi, solverTolerance, solverMaxIterations)

	return gross, marginal(gross)
}

// MarginalTaxOn returns the extra tax plus clawback a gross withdrawal
// adds on top of an existing taxable income. Used by the waterfall when a
// pool is exhausted and the net actually obtained must be computed from
// the capped gross rather than the requested net.
func (e *Engine) MarginalTaxOn(gross, currentTaxable, oasReceivable decimal.Decimal, province string, inflationFactor decimal.Decimal, age int) decimal.Decimal {
	if gross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	base := e.taxAndClawback(currentTaxable, oasReceivable, province, inflationFactor, age, decimal.Zero, decimal.Zero)
	return e.taxAndClawback(currentTaxable.Add(gross), oasReceivable, province, inflationFactor, age, decimal.Zero, decimal.Zero).Sub(base)
}
