package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSolveGrossWithdrawalRoundTrip(t *testing.T) {
	e := NewEngine()
	one := decimal.NewFromInt(1)

	tests := []struct {
		name           string
		targetNet      string
		currentTaxable string
		age            int
	}{
		{"Small top-up at low income", "5000", "20000", 72},
		{"Mid income", "30000", "60000", 72},
		{"High income near clawback", "40000", "90000", 72},
		{"No existing income", "25000", "0", 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targetNet := decimal.RequireFromString(tt.targetNet)
			currentTaxable := decimal.RequireFromString(tt.currentTaxable)
			oas := decimal.NewFromInt(8732)

			gross, marginalTax := e.SolveGrossWithdrawal(targetNet, currentTaxable, oas, "ON", one, tt.age)

			net := gross.Sub(marginalTax)
			assert.True(t, net.Sub(targetNet).Abs().LessThanOrEqual(decimal.NewFromInt(1)),
				"gross %s minus marginal tax %s should net within $1 of %s, got %s",
				gross, marginalTax, targetNet, net)
			assert.True(t, gross.GreaterThanOrEqual(targetNet),
				"gross can never be below the net target under a positive tax rate")
		})
	}
}

func TestSolveGrossWithdrawalZeroTarget(t *testing.T) {
	e := NewEngine()
	gross, tax := e.SolveGrossWithdrawal(decimal.Zero, decimal.NewFromInt(50000), decimal.Zero, "ON", decimal.NewFromInt(1), 70)
	assert.True(t, gross.IsZero())
	assert.True(t, tax.IsZero())
}

func TestMarginalTaxOnMatchesSolver(t *testing.T) {
	e := NewEngine()
	one := decimal.NewFromInt(1)
	currentTaxable := decimal.NewFromInt(40000)

	gross, marginalTax := e.SolveGrossWithdrawal(decimal.NewFromInt(20000), currentTaxable, decimal.Zero, "BC", one, 68)
	recomputed := e.MarginalTaxOn(gross, currentTaxable, decimal.Zero, "BC", one, 68)
	assert.True(t, recomputed.Equal(marginalTax),
		"MarginalTaxOn must agree with the solver's own marginal figure")
}

func TestMarginalTaxIsProgressive(t *testing.T) {
	e := NewEngine()
	one := decimal.NewFromInt(1)
	gross := decimal.NewFromInt(10000)

	low := e.MarginalTaxOn(gross, decimal.NewFromInt(30000), decimal.Zero, "ON", one, 70)
	high := e.MarginalTaxOn(gross, decimal.NewFromInt(120000), decimal.Zero, "ON", one, 70)
	assert.True(t, high.GreaterThan(low),
		"the same withdrawal must cost more tax on top of a higher income")
}
