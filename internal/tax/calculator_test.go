package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTaxOnProgressiveAccumulation(t *testing.T) {
	brackets := []Bracket{
		{decimal.Zero, decimal.NewFromFloat(0.10)},
		{decimal.NewFromInt(100), decimal.NewFromFloat(0.20)},
	}
	one := decimal.NewFromInt(1)

	tests := []struct {
		name     string
		income   decimal.Decimal
		expected decimal.Decimal
	}{
		{"Zero income", decimal.Zero, decimal.Zero},
		{"Within first bracket", decimal.NewFromInt(50), decimal.NewFromInt(5)},
		{"At the boundary", decimal.NewFromInt(100), decimal.NewFromInt(10)},
		{"Across both brackets", decimal.NewFromInt(150), decimal.NewFromInt(20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaxOn(tt.income, brackets, one)
			assert.True(t, got.Equal(tt.expected), "got %s want %s", got, tt.expected)
		})
	}
}

func TestTaxOnInflationScalesThresholds(t *testing.T) {
	brackets := []Bracket{
		{decimal.Zero, decimal.NewFromFloat(0.10)},
		{decimal.NewFromInt(100), decimal.NewFromFloat(0.20)},
	}
	// With a 2x factor the second bracket starts at 200, so 150 stays in
	// the first bracket.
	got := TaxOn(decimal.NewFromInt(150), brackets, decimal.NewFromInt(2))
	assert.True(t, got.Equal(decimal.NewFromInt(15)), "got %s", got)
}

func TestComputeTaxZeroBelowCredits(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)

	// Alberta's basic personal amounts exceed this income on both the
	// federal and provincial sides.
	got := c.ComputeTax(decimal.NewFromInt(12000), "AB", one, 40, decimal.Zero, decimal.Zero)
	assert.True(t, got.IsZero(), "credits should wipe out tax at low income, got %s", got)
}

func TestComputeTaxNeverNegative(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)

	got := c.ComputeTax(decimal.NewFromInt(3000), "ON", one, 70,
		decimal.NewFromInt(2000), decimal.NewFromInt(1380))
	assert.False(t, got.IsNegative())
}

func TestComputeTaxMonotonicInIncome(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)

	prev := decimal.Zero
	for income := int64(10000); income <= 400000; income += 10000 {
		got := c.ComputeTax(decimal.NewFromInt(income), "ON", one, 55, decimal.Zero, decimal.Zero)
		assert.True(t, got.GreaterThanOrEqual(prev), "tax dipped at income %d", income)
		prev = got
	}
}

func TestTaxOnConvexInIncome(t *testing.T) {
	rates := Default2025()
	one := decimal.NewFromInt(1)
	step := decimal.NewFromInt(5000)

	// Progressive brackets mean the marginal slice can never shrink as
	// income climbs.
	prevTax := decimal.Zero
	prevDelta := decimal.Zero
	for income := int64(5000); income <= 400000; income += 5000 {
		tax := TaxOn(decimal.NewFromInt(income), rates.FederalBrackets, one)
		delta := tax.Sub(prevTax)
		assert.True(t, delta.GreaterThanOrEqual(prevDelta),
			"marginal tax on the %s slice ending at %d shrank from %s to %s", step, income, prevDelta, delta)
		prevTax = tax
		prevDelta = delta
	}
}

func TestComputeTaxCreditsReduceTax(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)
	income := decimal.NewFromInt(80000)

	base := c.ComputeTax(income, "BC", one, 55, decimal.Zero, decimal.Zero)
	withPension := c.ComputeTax(income, "BC", one, 55, decimal.NewFromInt(5000), decimal.Zero)
	withAge := c.ComputeTax(income, "BC", one, 67, decimal.Zero, decimal.Zero)
	withDividends := c.ComputeTax(income, "BC", one, 55, decimal.Zero, decimal.NewFromInt(10000))

	assert.True(t, withPension.LessThan(base), "pension credit must reduce tax")
	assert.True(t, withAge.LessThan(base), "age credit must reduce tax for 65+")
	assert.True(t, withDividends.LessThan(base), "dividend credit must reduce tax")

	// The pension credit claim caps at $2,000 indexed.
	cappedA := c.ComputeTax(income, "BC", one, 55, decimal.NewFromInt(2000), decimal.Zero)
	cappedB := c.ComputeTax(income, "BC", one, 55, decimal.NewFromInt(50000), decimal.Zero)
	assert.True(t, cappedA.Equal(cappedB), "pension amounts beyond the cap claim the same credit")
}

func TestComputeTaxAgeCreditPhasesOut(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)

	// At very high income the age credit is fully ground away, so the 65+
	// tax matches the under-65 tax.
	income := decimal.NewFromInt(350000)
	young := c.ComputeTax(income, "BC", one, 55, decimal.Zero, decimal.Zero)
	old := c.ComputeTax(income, "BC", one, 75, decimal.Zero, decimal.Zero)
	assert.True(t, old.Equal(young), "a fully phased-out age credit leaves no difference")
}

func TestOntarioSurtaxAndPremiumRaiseTax(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)
	income := decimal.NewFromInt(250000)

	total := c.ComputeTax(income, "ON", one, 55, decimal.Zero, decimal.Zero)

	pr, _ := c.Rates().ResolveProvince("ON")
	federal := TaxOn(income, c.Rates().FederalBrackets, one)
	provincial := TaxOn(income, pr.Brackets, one)
	federalCredit := c.Rates().PersonalAmounts["federal"].Mul(decimal.NewFromFloat(0.15))
	provincialCredit := pr.PersonalAmount.Mul(FirstRate(pr.Brackets))
	withoutExtras := federal.Add(provincial).Sub(federalCredit).Sub(provincialCredit)

	assert.True(t, total.GreaterThan(withoutExtras),
		"high Ontario income must attract surtax and health premium on top of bracket tax")
}

func TestOntarioHealthPremium(t *testing.T) {
	tests := []struct {
		income   int64
		expected string
	}{
		{15000, "0"},
		{20000, "0"},
		{24000, "240"},
		{30000, "300"},
		{38000, "420"},
		{50000, "600"},
		{80000, "750"},
		{250000, "900"},
	}

	for _, tt := range tests {
		got := OntarioHealthPremium(decimal.NewFromInt(tt.income))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
			"income %d: got %s want %s", tt.income, got, tt.expected)
	}
}

func TestNewCalculatorNormalizesBracketOrder(t *testing.T) {
	one := decimal.NewFromInt(1)
	income := decimal.NewFromInt(150000)

	ordered := Default2025()
	shuffled := Default2025()
	for i, j := 0, len(shuffled.FederalBrackets)-1; i < j; i, j = i+1, j-1 {
		shuffled.FederalBrackets[i], shuffled.FederalBrackets[j] = shuffled.FederalBrackets[j], shuffled.FederalBrackets[i]
	}
	on := shuffled.ProvincialBrackets["ON"]
	on[0], on[len(on)-1] = on[len(on)-1], on[0]

	want := NewCalculator(ordered).ComputeTax(income, "ON", one, 55, decimal.Zero, decimal.Zero)
	got := NewCalculator(shuffled).ComputeTax(income, "ON", one, 55, decimal.Zero, decimal.Zero)
	assert.True(t, got.Equal(want), "schedule order must not change the tax: got %s want %s", got, want)
}

func TestComputeClawback(t *testing.T) {
	c := NewDefaultCalculator()
	one := decimal.NewFromInt(1)
	threshold := c.Rates().OASClawbackThreshold
	maxOAS := decimal.NewFromInt(8732)

	tests := []struct {
		name     string
		net      decimal.Decimal
		expected string
	}{
		{"Below threshold", decimal.NewFromInt(80000), "0"},
		{"At threshold", threshold, "0"},
		{"Above threshold", decimal.NewFromInt(100000), "981.90"},
		{"Capped at benefit", decimal.NewFromInt(300000), "8732"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ComputeClawback(tt.net, maxOAS, one, threshold)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s want %s", got, tt.expected)
		})
	}
}

func TestResolveProvinceFallback(t *testing.T) {
	rates := Default2025()

	pr, fellBack := rates.ResolveProvince("BC")
	assert.False(t, fellBack)
	assert.Equal(t, "BC", pr.Code)

	pr, fellBack = rates.ResolveProvince("XX")
	assert.True(t, fellBack, "unknown codes must report the fallback explicitly")
	assert.Equal(t, rates.DefaultProvince, pr.Code)
	assert.NotEmpty(t, pr.Brackets)
}

func TestKnownProvince(t *testing.T) {
	c := NewDefaultCalculator()
	assert.True(t, c.KnownProvince("ON"))
	assert.True(t, c.KnownProvince("QC"))
	assert.False(t, c.KnownProvince("YT"))
}
