package calculation

import (
	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/shopspring/decimal"
)

// splitSearchIterations bounds the ternary search; the tax-with-clawback
// objective is unimodal in practice, so 15 narrowings pin the transfer to
// well under a dollar of bracket width.
const splitSearchIterations = 15

var splitHalf = decimal.NewFromFloat(0.5)

// SplitProfile is one person's single-year tax position for the income
// split optimizer. It deliberately carries figures, not a Person: the
// optimizer only consults the tax engine, never the simulator.
type SplitProfile struct {
	Name               string
	Age                int
	TaxableIncome      decimal.Decimal
	EligiblePension    decimal.Decimal
	OASAmount          decimal.Decimal
	GrossedUpDividends decimal.Decimal
}

func (sp SplitProfile) shifted(amount decimal.Decimal) SplitProfile {
	sp.TaxableIncome = sp.TaxableIncome.Add(amount)
	sp.EligiblePension = sp.EligiblePension.Add(amount)
	return sp
}

// ComputeOptimalSplit searches for the pension-income transfer that
// minimizes the couple's combined tax plus OAS clawback. Each direction
// is tried when the transferor is 65+ with positive eligible pension
// income, over transfer amounts up to half that pension. The better
// direction wins; a zero-amount result means no transfer beats the
// standalone taxes.
func (e *Engine) ComputeOptimalSplit(a, b SplitProfile, province string, inflationFactor decimal.Decimal) domain.SplitResult {
	burden := func(p SplitProfile) decimal.Decimal {
		return e.taxAndClawback(p.TaxableIncome, p.OASAmount, province, inflationFactor, p.Age, p.EligiblePension, p.GrossedUpDividends)
	}

	baseA := burden(a)
	baseB := burden(b)
	baseline := baseA.Add(baseB)

	best := domain.SplitResult{
		FromTax:     baseA,
		ToTax:       baseB,
		BaselineTax: baseline,
	}

	directions := []struct{ from, to SplitProfile }{{a, b}, {b, a}}
	for _, dir := range directions {
		if dir.from.Age < 65 || dir.from.EligiblePension.LessThanOrEqual(decimal.Zero) {
			continue
		}
		maxTransfer := dir.from.EligiblePension.Mul(splitHalf)

		combined := func(x decimal.Decimal) decimal.Decimal {
			return burden(dir.from.shifted(x.Neg())).Add(burden(dir.to.shifted(x)))
		}

		x := ternaryMin(combined, decimal.Zero, maxTransfer, splitSearchIterations)
		saving := baseline.Sub(combined(x))
		if saving.GreaterThan(best.Savings) {
			best = domain.SplitResult{
				Amount:      x,
				FromName:    dir.from.Name,
				ToName:      dir.to.Name,
				Savings:     saving,
				FromTax:     burden(dir.from.shifted(x.Neg())),
				ToTax:       burden(dir.to.shifted(x)),
				BaselineTax: baseline,
			}
		}
	}

	if best.Savings.LessThanOrEqual(decimal.Zero) {
		best.Amount = decimal.Zero
		best.FromName = ""
		best.ToName = ""
		best.Savings = decimal.Zero
		best.FromTax = baseA
		best.ToTax = baseB
	}
	return best
}
