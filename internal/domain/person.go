package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a balance-only registered account (RRSP/RRIF or TFSA).
type Account struct {
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
}

// Withdraw removes up to amount from the account and returns the amount
// actually withdrawn. The balance never goes negative.
func (a *Account) Withdraw(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if amount.GreaterThan(a.Balance) {
		amount = a.Balance
	}
	a.Balance = a.Balance.Sub(amount)
	return amount
}

// AssetMix describes how an open account's balance is allocated across
// interest-bearing, dividend-paying and growth assets. The three fractions
// are expected to sum to ~1.0.
type AssetMix struct {
	Interest decimal.Decimal `yaml:"interest" json:"interest"`
	Dividend decimal.Decimal `yaml:"dividend" json:"dividend"`
	Capital  decimal.Decimal `yaml:"capital" json:"capital"`
}

// OpenAccount is a non-registered investment account. It tracks an adjusted
// cost base so realized gains can be computed on withdrawal.
type OpenAccount struct {
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
	ACB     decimal.Decimal `yaml:"acb" json:"acb"`
	Mix     AssetMix        `yaml:"mix" json:"mix"`
}

// Withdraw removes up to amount from the account, reducing the ACB
// proportionally, and returns the amount withdrawn plus the realized
// capital gain on that withdrawal.
func (o *OpenAccount) Withdraw(amount decimal.Decimal) (withdrawn, realizedGain decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) || o.Balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	if amount.GreaterThan(o.Balance) {
		amount = o.Balance
	}
	gainFraction := o.Balance.Sub(o.ACB).Div(o.Balance)
	if gainFraction.LessThan(decimal.Zero) {
		gainFraction = decimal.Zero
	}
	realizedGain = amount.Mul(gainFraction)
	// ACB shrinks by the share of the balance withdrawn.
	o.ACB = o.ACB.Mul(decimal.NewFromInt(1).Sub(amount.Div(o.Balance)))
	o.Balance = o.Balance.Sub(amount)
	return amount, realizedGain
}

// Deposit adds new principal: balance and ACB both increase by amount.
func (o *OpenAccount) Deposit(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	o.Balance = o.Balance.Add(amount)
	o.ACB = o.ACB.Add(amount)
}

// MeltPlan is a voluntary fixed annual RRSP withdrawal taken between a
// start age and the mandatory RRIF conversion age, typically to draw down
// the deferred account in low-income years.
type MeltPlan struct {
	StartAge     int             `yaml:"start_age" json:"startAge"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annualAmount"`
}

// Person holds one household member's ages, income and accounts. A Person
// is cloned at the start of a simulation run and mutated year by year; the
// caller's copy is never touched.
type Person struct {
	Name                 string          `yaml:"name" json:"name"`
	Age                  int             `yaml:"age" json:"age"`
	RetirementAge        int             `yaml:"retirement_age" json:"retirementAge"`
	DeathAge             int             `yaml:"death_age" json:"deathAge"`
	EmploymentIncome     decimal.Decimal `yaml:"employment_income" json:"employmentIncome"`
	CPPStartAge          int             `yaml:"cpp_start_age" json:"cppStartAge"`
	OASStartAge          int             `yaml:"oas_start_age" json:"oasStartAge"`
	CPPContributionYears int             `yaml:"cpp_contribution_years" json:"cppContributionYears"`
	Melt                 *MeltPlan       `yaml:"melt,omitempty" json:"melt,omitempty"`

	RRSP Account     `yaml:"rrsp" json:"rrsp"`
	TFSA Account     `yaml:"tfsa" json:"tfsa"`
	Open OpenAccount `yaml:"open" json:"open"`
}

// Clone returns an independent copy of the person, including the melt plan.
func (p *Person) Clone() *Person {
	cp := *p
	if p.Melt != nil {
		melt := *p.Melt
		cp.Melt = &melt
	}
	return &cp
}

// IsAlive reports whether the person has not yet reached their death age.
func (p *Person) IsAlive() bool {
	return p.Age <= p.DeathAge
}

// IsRetired reports whether the person has reached their retirement age.
func (p *Person) IsRetired() bool {
	return p.Age >= p.RetirementAge
}

// TotalAssets sums all three account balances.
func (p *Person) TotalAssets() decimal.Decimal {
	return p.RRSP.Balance.Add(p.TFSA.Balance).Add(p.Open.Balance)
}

// ValidAges reports whether the age configuration can be simulated:
// non-negative ages, retirement no later than death, and a lifespan that
// fits inside the projection iteration cap.
func (p *Person) ValidAges(maxYears int) bool {
	if p.Age < 0 || p.RetirementAge < 0 || p.DeathAge < 0 {
		return false
	}
	if p.RetirementAge > p.DeathAge {
		return false
	}
	if p.DeathAge-p.Age >= maxYears {
		return false
	}
	return p.Age <= p.DeathAge
}
