package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountWithdraw(t *testing.T) {
	a := Account{Balance: decimal.NewFromInt(1000)}

	got := a.Withdraw(decimal.NewFromInt(300))
	assert.True(t, got.Equal(decimal.NewFromInt(300)))
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(700)))

	got = a.Withdraw(decimal.NewFromInt(5000))
	assert.True(t, got.Equal(decimal.NewFromInt(700)), "withdrawal caps at the balance")
	assert.True(t, a.Balance.IsZero())

	got = a.Withdraw(decimal.NewFromInt(-10))
	assert.True(t, got.IsZero(), "negative requests are ignored")
}

func TestOpenAccountWithdrawRealizesProportionalGain(t *testing.T) {
	o := OpenAccount{
		Balance: decimal.NewFromInt(100000),
		ACB:     decimal.NewFromInt(60000),
	}

	withdrawn, gain := o.Withdraw(decimal.NewFromInt(25000))
	assert.True(t, withdrawn.Equal(decimal.NewFromInt(25000)))
	// 40% of the balance is unrealized gain, so a quarter of the account
	// realizes a quarter of it.
	assert.True(t, gain.Equal(decimal.NewFromInt(10000)), "got %s", gain)
	assert.True(t, o.Balance.Equal(decimal.NewFromInt(75000)))
	assert.True(t, o.ACB.Equal(decimal.NewFromInt(45000)), "ACB shrinks by the withdrawn share")
}

func TestOpenAccountWithdrawNoGainWhenUnderWater(t *testing.T) {
	o := OpenAccount{
		Balance: decimal.NewFromInt(50000),
		ACB:     decimal.NewFromInt(80000),
	}
	_, gain := o.Withdraw(decimal.NewFromInt(10000))
	assert.True(t, gain.IsZero(), "losses never produce a positive realized gain")
}

func TestOpenAccountWithdrawCapsAtBalance(t *testing.T) {
	o := OpenAccount{
		Balance: decimal.NewFromInt(10000),
		ACB:     decimal.NewFromInt(5000),
	}
	withdrawn, gain := o.Withdraw(decimal.NewFromInt(99999))
	assert.True(t, withdrawn.Equal(decimal.NewFromInt(10000)))
	assert.True(t, gain.Equal(decimal.NewFromInt(5000)), "a full liquidation realizes the whole gain")
	assert.True(t, o.Balance.IsZero())
	assert.True(t, o.ACB.IsZero())
}

func TestOpenAccountDeposit(t *testing.T) {
	o := OpenAccount{
		Balance: decimal.NewFromInt(10000),
		ACB:     decimal.NewFromInt(8000),
	}
	o.Deposit(decimal.NewFromInt(2000))
	assert.True(t, o.Balance.Equal(decimal.NewFromInt(12000)))
	assert.True(t, o.ACB.Equal(decimal.NewFromInt(10000)), "new principal is cost base")

	o.Deposit(decimal.NewFromInt(-5))
	assert.True(t, o.Balance.Equal(decimal.NewFromInt(12000)), "negative deposits are ignored")
}

func TestPersonClone(t *testing.T) {
	p := &Person{
		Name:     "Avery",
		Age:      60,
		DeathAge: 90,
		Melt:     &MeltPlan{StartAge: 63, AnnualAmount: decimal.NewFromInt(20000)},
		RRSP:     Account{Balance: decimal.NewFromInt(100000)},
	}

	cp := p.Clone()
	cp.Age = 75
	cp.RRSP.Balance = decimal.Zero
	cp.Melt.AnnualAmount = decimal.NewFromInt(1)

	assert.Equal(t, 60, p.Age)
	assert.True(t, p.RRSP.Balance.Equal(decimal.NewFromInt(100000)))
	assert.True(t, p.Melt.AnnualAmount.Equal(decimal.NewFromInt(20000)),
		"the melt plan must be deep-copied")
}

func TestPersonAgePredicates(t *testing.T) {
	p := &Person{Age: 65, RetirementAge: 65, DeathAge: 65}
	assert.True(t, p.IsAlive(), "the death-age year itself is still lived")
	assert.True(t, p.IsRetired())

	p.Age = 66
	assert.False(t, p.IsAlive())
}

func TestValidAges(t *testing.T) {
	tests := []struct {
		name     string
		person   Person
		expected bool
	}{
		{"Normal", Person{Age: 60, RetirementAge: 65, DeathAge: 90}, true},
		{"Retirement after death", Person{Age: 60, RetirementAge: 95, DeathAge: 90}, false},
		{"Negative age", Person{Age: -1, RetirementAge: 65, DeathAge: 90}, false},
		{"Already past death", Person{Age: 91, RetirementAge: 65, DeathAge: 90}, false},
		{"Lifespan at the cap", Person{Age: 0, RetirementAge: 0, DeathAge: 120}, false},
		{"Lifespan under the cap", Person{Age: 0, RetirementAge: 0, DeathAge: 119}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.person.ValidAges(120))
		})
	}
}

func TestWithdrawalPolicyIsValid(t *testing.T) {
	assert.True(t, WithdrawTaxEfficient.IsValid())
	assert.True(t, WithdrawDeferredFirst.IsValid())
	assert.False(t, WithdrawalPolicy("").IsValid())
	assert.False(t, WithdrawalPolicy("everything_first").IsValid())
}

func TestIncomeBreakdownTotals(t *testing.T) {
	ib := IncomeBreakdown{
		Salary:        decimal.NewFromInt(50000),
		CPP:           decimal.NewFromInt(10000),
		Interest:      decimal.NewFromInt(1000),
		Dividends:     decimal.NewFromInt(2000),
		TFSAWithdraw:  decimal.NewFromInt(5000),
		OpenPrincipal: decimal.NewFromInt(3000),
	}

	assert.True(t, ib.TaxableTotal().Equal(decimal.NewFromInt(61000)),
		"dividends and non-taxable flows stay out of the taxable total")
	assert.True(t, ib.GrossTotal().Equal(decimal.NewFromInt(71000)))
}
