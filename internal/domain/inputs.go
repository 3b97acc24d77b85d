package domain

import (
	"github.com/shopspring/decimal"
)

// WithdrawalPolicy selects the order the deficit waterfall drains accounts.
type WithdrawalPolicy string

const (
	// WithdrawTaxEfficient draws open-account principal first, then TFSA,
	// leaving the deferred account for last.
	WithdrawTaxEfficient WithdrawalPolicy = "tax_efficient"
	// WithdrawDeferredFirst reverses the order and drains the deferred
	// account before touching TFSA or open funds.
	WithdrawDeferredFirst WithdrawalPolicy = "deferred_first"
)

// IsValid reports whether the policy is one of the two known orderings.
func (wp WithdrawalPolicy) IsValid() bool {
	return wp == WithdrawTaxEfficient || wp == WithdrawDeferredFirst
}

// OneTimeEvent is a named cash event triggered once, in the year the
// primary person reaches Age. Expenses add to the spending target; inflows
// reduce it.
type OneTimeEvent struct {
	Name      string          `yaml:"name" json:"name"`
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Age       int             `yaml:"age" json:"age"`
	IsExpense bool            `yaml:"is_expense" json:"isExpense"`
}

// ReturnAssumptions are the market assumptions applied every projected year.
// Volatility is only consulted in stochastic (Monte Carlo) mode.
type ReturnAssumptions struct {
	InterestYield decimal.Decimal `yaml:"interest_yield" json:"interestYield"`
	DividendYield decimal.Decimal `yaml:"dividend_yield" json:"dividendYield"`
	CapitalGrowth decimal.Decimal `yaml:"capital_growth" json:"capitalGrowth"`
	Volatility    decimal.Decimal `yaml:"volatility" json:"volatility"`
}

// SimulationInputs is the full input record for one projection run. The
// engine never mutates it: persons are cloned before the run starts.
type SimulationInputs struct {
	Person *Person `yaml:"person" json:"person"`
	Spouse *Person `yaml:"spouse,omitempty" json:"spouse,omitempty"`

	Province      string          `yaml:"province" json:"province"`
	InflationRate decimal.Decimal `yaml:"inflation_rate" json:"inflationRate"`

	PreRetirementSpend  decimal.Decimal `yaml:"pre_retirement_spend" json:"preRetirementSpend"`
	PostRetirementSpend decimal.Decimal `yaml:"post_retirement_spend" json:"postRetirementSpend"`

	Events []OneTimeEvent `yaml:"events,omitempty" json:"events,omitempty"`

	Policy      WithdrawalPolicy  `yaml:"withdrawal_policy" json:"withdrawalPolicy"`
	SplitIncome bool              `yaml:"split_income" json:"splitIncome"`
	Returns     ReturnAssumptions `yaml:"returns" json:"returns"`
}

// Persons returns the one or two people in the household.
func (si *SimulationInputs) Persons() []*Person {
	if si.Spouse != nil {
		return []*Person{si.Person, si.Spouse}
	}
	return []*Person{si.Person}
}
