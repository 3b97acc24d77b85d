package tax

import (
	"github.com/shopspring/decimal"
)

var (
	decimalZero    = decimal.Zero
	federalLowRate = decimal.NewFromFloat(0.15)
	clawbackRate   = decimal.NewFromFloat(0.15)
	ageCreditRate  = decimal.NewFromFloat(0.15)
)

// Calculator computes combined federal + provincial income tax under one
// Rates table. It is pure and stateless: the same inputs always produce
// the same tax, and it is called many times per simulated year.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a calculator bound to an explicit rates table.
// Bracket schedules are normalized to ascending threshold order so a
// hand-built table cannot skew the accumulation.
func NewCalculator(rates Rates) *Calculator {
	rates.FederalBrackets = Sorted(rates.FederalBrackets)
	normalized := make(map[string][]Bracket, len(rates.ProvincialBrackets))
	for code, brackets := range rates.ProvincialBrackets {
		normalized[code] = Sorted(brackets)
	}
	rates.ProvincialBrackets = normalized
	return &Calculator{rates: rates}
}

// NewDefaultCalculator creates a calculator on the current published table.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(Default2025())
}

// Rates returns the bound table.
func (c *Calculator) Rates() Rates {
	return c.rates
}

// KnownProvince reports whether code resolves without the fallback.
func (c *Calculator) KnownProvince(code string) bool {
	_, ok := c.rates.ProvincialBrackets[code]
	return ok
}

// ComputeTax returns combined federal and provincial tax on taxable income,
// with bracket and credit thresholds scaled by inflationFactor.
//
// Credits applied, each only when its input is present: the two basic
// personal credits, the pension income credit (capped at $2,000 indexed),
// the dividend tax credit on grossed-up dividends, and the age credit for
// 65+. Ontario additionally levies its health premium and two-tier surtax.
// The result is floored at zero, never negative.
func (c *Calculator) ComputeTax(income decimal.Decimal, province string, inflationFactor decimal.Decimal, age int, eligiblePension, grossedUpDividends decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(decimalZero) {
		return decimalZero
	}
	pr, _ := c.rates.ResolveProvince(province)

	federalTax := TaxOn(income, c.rates.FederalBrackets, inflationFactor)
	provincialTax := TaxOn(income, pr.Brackets, inflationFactor)

	provLowRate := FirstRate(pr.Brackets)
	combinedLowRate := federalLowRate.Add(provLowRate)

	federalCredit := c.rates.PersonalAmounts["federal"].Mul(inflationFactor).Mul(federalLowRate)
	provincialCredit := pr.PersonalAmount.Mul(inflationFactor).Mul(provLowRate)

	total := federalTax.Add(provincialTax).Sub(federalCredit).Sub(provincialCredit)

	if eligiblePension.GreaterThan(decimalZero) {
		claim := decimal.Min(eligiblePension, c.rates.PensionCreditCap.Mul(inflationFactor))
		total = total.Sub(claim.Mul(combinedLowRate))
	}

	if grossedUpDividends.GreaterThan(decimalZero) {
		rate := c.rates.FederalDividendCredit.Add(pr.DividendCredit)
		total = total.Sub(grossedUpDividends.Mul(rate))
	}

	if age >= 65 {
		claim := c.rates.AgeCreditMax.Mul(inflationFactor)
		over := income.Sub(c.rates.AgeCreditThreshold.Mul(inflationFactor))
		if over.GreaterThan(decimalZero) {
			claim = claim.Sub(over.Mul(ageCreditRate))
		}
		if claim.GreaterThan(decimalZero) {
			total = total.Sub(claim.Mul(combinedLowRate))
		}
	}

	if pr.Code == "ON" {
		ontarioBasic := provincialTax.Sub(provincialCredit)
		if ontarioBasic.LessThan(decimalZero) {
			ontarioBasic = decimalZero
		}
		total = total.Add(c.ontarioSurtax(ontarioBasic, inflationFactor))
		total = total.Add(OntarioHealthPremium(income))
	}

	if total.LessThan(decimalZero) {
		return decimalZero
	}
	return total
}

// ontarioSurtax applies the cumulative 20% / 36% surtax on Ontario basic
// tax above two indexed thresholds.
func (c *Calculator) ontarioSurtax(basicTax, inflationFactor decimal.Decimal) decimal.Decimal {
	surtax := decimalZero

	firstExcess := basicTax.Sub(c.rates.SurtaxFirstThreshold.Mul(inflationFactor))
	if firstExcess.GreaterThan(decimalZero) {
		surtax = surtax.Add(firstExcess.Mul(decimal.NewFromFloat(0.20)))
	}
	secondExcess := basicTax.Sub(c.rates.SurtaxSecondThreshold.Mul(inflationFactor))
	if secondExcess.GreaterThan(decimalZero) {
		surtax = surtax.Add(secondExcess.Mul(decimal.NewFromFloat(0.36)))
	}
	return surtax
}

// OntarioHealthPremium is the banded flat surcharge levied on Ontario
// taxable income: flat plateaus joined by short phase-in ramps, topping
// out at $900.
func OntarioHealthPremium(income decimal.Decimal) decimal.Decimal {
	type band struct {
		floor   decimal.Decimal
		base    decimal.Decimal
		rate    decimal.Decimal
		ceiling decimal.Decimal
	}
	bands := []band{
		{decimal.NewFromInt(20000), decimalZero, decimal.NewFromFloat(0.06), decimal.NewFromInt(300)},
		{decimal.NewFromInt(36000), decimal.NewFromInt(300), decimal.NewFromFloat(0.06), decimal.NewFromInt(450)},
		{decimal.NewFromInt(48000), decimal.NewFromInt(450), decimal.NewFromFloat(0.25), decimal.NewFromInt(600)},
		{decimal.NewFromInt(72000), decimal.NewFromInt(600), decimal.NewFromFloat(0.25), decimal.NewFromInt(750)},
		{decimal.NewFromInt(200000), decimal.NewFromInt(750), decimal.NewFromFloat(0.25), decimal.NewFromInt(900)},
	}

	premium := decimalZero
	for _, b := range bands {
		if income.LessThanOrEqual(b.floor) {
			break
		}
		p := b.base.Add(income.Sub(b.floor).Mul(b.rate))
		if p.GreaterThan(b.ceiling) {
			p = b.ceiling
		}
		premium = p
	}
	return premium
}

// ComputeClawback returns the benefit repayment on net income above the
// indexed threshold: 15% of the excess, capped at the benefit actually
// receivable.
func (c *Calculator) ComputeClawback(netIncome, maxClawback, inflationFactor, threshold decimal.Decimal) decimal.Decimal {
	excess := netIncome.Sub(threshold.Mul(inflationFactor))
	if excess.LessThanOrEqual(decimalZero) {
		return decimalZero
	}
	repayment := excess.Mul(clawbackRate)
	if repayment.GreaterThan(maxClawback) {
		repayment = maxClawback
	}
	return repayment
}
