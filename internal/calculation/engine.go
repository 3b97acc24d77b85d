package calculation

import (
	"math/rand"
	"time"

	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/mapleplan/mapleplan/internal/tax"
	"github.com/shopspring/decimal"
)

// MaxProjectionYears is the hard iteration cap. It exists as a safety
// bound against malformed inputs; a legitimate projection never reaches it.
const MaxProjectionYears = 120

// Logger is the engine's logging seam. The CLI supplies a std-log backed
// implementation; tests and library callers can leave it unset.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// Engine runs household retirement projections. It is single-threaded and
// synchronous: every call either completes with a result sequence or, for
// malformed inputs, returns an empty sequence immediately.
type Engine struct {
	taxCalc *tax.Calculator
	logger  Logger
}

// NewEngine creates an engine on the current published rates table.
func NewEngine() *Engine {
	return NewEngineWithRates(tax.Default2025())
}

// NewEngineWithRates creates an engine bound to an explicit rates table.
func NewEngineWithRates(rates tax.Rates) *Engine {
	return &Engine{taxCalc: tax.NewCalculator(rates), logger: noopLogger{}}
}

// SetLogger installs a logger; a nil logger restores the no-op default.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.logger = noopLogger{}
		return
	}
	e.logger = l
}

// TaxCalculator exposes the bound calculator for callers that only need
// single-year tax figures.
func (e *Engine) TaxCalculator() *tax.Calculator {
	return e.taxCalc
}

// taxAndClawback is the combined burden on a taxable income figure: income
// tax plus the OAS repayment it triggers. The solver and the split
// optimizer both evaluate this many times per year.
func (e *Engine) taxAndClawback(income, oasReceivable decimal.Decimal, province string, inflationFactor decimal.Decimal, age int, eligiblePension, grossedUpDividends decimal.Decimal) decimal.Decimal {
	t := e.taxCalc.ComputeTax(income, province, inflationFactor, age, eligiblePension, grossedUpDividends)
	cb := e.taxCalc.ComputeClawback(income, oasReceivable, inflationFactor, e.taxCalc.Rates().OASClawbackThreshold)
	return t.Add(cb)
}

// RunSimulation projects the household year by year until everyone has
// died or the iteration cap is hit. Input persons are cloned first; the
// caller's records are never mutated. Invalid age configurations produce
// an empty (non-nil) result sequence, never an error or panic, so callers
// can render a "no projection possible" state.
func (e *Engine) RunSimulation(inputs *domain.SimulationInputs, stochastic bool) []domain.YearResult {
	growth := func(int) decimal.Decimal { return inputs.Returns.CapitalGrowth }
	if stochastic {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		growth = growthSampler(inputs.Returns, rng)
	}
	return e.project(inputs, growth)
}

// growthSampler perturbs the mean capital-growth rate each simulated year
// with volatility-scaled standard-normal noise.
func growthSampler(returns domain.ReturnAssumptions, rng *rand.Rand) func(int) decimal.Decimal {
	return func(int) decimal.Decimal {
		z := standardNormal(rng)
		return returns.CapitalGrowth.Add(returns.Volatility.Mul(decimal.NewFromFloat(z)))
	}
}

// personYearState accumulates one person's in-year figures before they are
// frozen into a PersonYear record.
type personYearState struct {
	person *domain.Person
	alive  bool

	income             domain.IncomeBreakdown
	grossedUpDividends decimal.Decimal
	eligiblePension    decimal.Decimal
	oasReceived        decimal.Decimal
	realizedGains      decimal.Decimal

	taxable  decimal.Decimal
	tax      decimal.Decimal
	clawback decimal.Decimal
}

func (e *Engine) project(inputs *domain.SimulationInputs, growthFor func(year int) decimal.Decimal) []domain.YearResult {
	if inputs == nil || inputs.Person == nil {
		return []domain.YearResult{}
	}
	for _, p := range inputs.Persons() {
		if !p.ValidAges(MaxProjectionYears) {
			e.logger.Warnf("rejecting simulation: invalid age configuration for %q (age=%d retirement=%d death=%d)",
				p.Name, p.Age, p.RetirementAge, p.DeathAge)
			return []domain.YearResult{}
		}
	}

	policy := inputs.Policy
	if !policy.IsValid() {
		policy = domain.WithdrawTaxEfficient
	}
	province := inputs.Province
	if _, fellBack := e.taxCalc.Rates().ResolveProvince(province); fellBack {
		e.logger.Warnf("province %q not in rates table, using default %q", province, e.taxCalc.Rates().DefaultProvince)
	}

	primary := inputs.Person.Clone()
	people := []*domain.Person{primary}
	if inputs.Spouse != nil {
		people = append(people, inputs.Spouse.Clone())
	}

	rates := e.taxCalc.Rates()
	inflationFactor := decimalOne
	onePlusInflation := decimalOne.Add(inputs.InflationRate)

	results := make([]domain.YearResult, 0, 40)

	for year := 0; year < MaxProjectionYears; year++ {
		anyAlive := false
		for _, p := range people {
			if p.IsAlive() {
				anyAlive = true
			}
		}
		if !anyAlive {
			break
		}

		rolloverToSurvivor(people)
		growthRate := growthFor(year)

		// 1. Forced income for each living person.
		states := make([]*personYearState, len(people))
		for i, p := range people {
			st := &personYearState{person: p, alive: p.IsAlive()}
			states[i] = st
			if !st.alive {
				continue
			}

			if p.Age < p.RetirementAge {
				st.income.Salary = p.EmploymentIncome.Mul(inflationFactor)
			}
			st.income.CPP = AnnualCPP(p.Age, p.CPPStartAge, p.CPPContributionYears, rates, inflationFactor)
			st.income.OAS = AnnualOAS(p.Age, p.OASStartAge, rates, inflationFactor)
			st.oasReceived = st.income.OAS

			if minOut := MinimumWithdrawal(p.RRSP.Balance, p.Age); minOut.GreaterThan(decimal.Zero) {
				st.income.RRIFMinimum = p.RRSP.Withdraw(minOut)
			}
			if p.Melt != nil && p.Age >= p.Melt.StartAge && p.Age < RRIFConversionAge {
				st.income.MeltWithdraw = p.RRSP.Withdraw(p.Melt.AnnualAmount)
			}

			st.income.Interest = p.Open.Balance.Mul(p.Open.Mix.Interest).Mul(inputs.Returns.InterestYield)
			st.income.Dividends = p.Open.Balance.Mul(p.Open.Mix.Dividend).Mul(inputs.Returns.DividendYield)
			st.grossedUpDividends = st.income.Dividends.Mul(tax.DividendGrossUp)

			if p.Age >= 65 {
				st.eligiblePension = st.income.RRIFMinimum.Add(st.income.MeltWithdraw)
			}
		}

		// 2. Baseline tax from forced income alone, then the spending gap.
		for _, st := range states {
			if !st.alive {
				continue
			}
			st.taxable = st.income.TaxableTotal().Add(st.grossedUpDividends)
			st.tax = e.taxCalc.ComputeTax(st.taxable, province, inflationFactor, st.person.Age, st.eligiblePension, st.grossedUpDividends)
			st.clawback = e.taxCalc.ComputeClawback(st.taxable, st.oasReceived, inflationFactor, rates.OASClawbackThreshold)
		}

		target := e.spendingTarget(inputs, primary, inflationFactor)
		netCash := decimal.Zero
		for _, st := range states {
			if !st.alive {
				continue
			}
			cash := st.income.TaxableTotal().Add(st.income.Dividends)
			netCash = netCash.Add(cash.Sub(st.tax).Sub(st.clawback))
		}

		recordedTarget := target
		if recordedTarget.LessThan(decimal.Zero) {
			recordedTarget = decimal.Zero
		}
		yr := domain.YearResult{
			Year:            year,
			InflationFactor: inflationFactor,
			SpendingTarget:  recordedTarget,
		}

		// 3/4. Resolve the gap between cash in hand and the target.
		if netCash.LessThan(target) {
			deficit := target.Sub(netCash)
			yr.Deficit = deficit
			e.resolveDeficit(deficit, policy, states, province, inflationFactor)
		} else if netCash.GreaterThan(target) {
			surplus := netCash.Sub(target)
			yr.Surplus = surplus
			yr.ReinvestTFSA, yr.ReinvestRRSP, yr.ReinvestOpen = e.reinvestSurplus(surplus, states, rates, inflationFactor)
		}

		// 5. Final tax on the now-known full-year income, including the
		// solver-driven deferred withdrawals and realized gains at the
		// inclusion rate.
		for _, st := range states {
			if !st.alive {
				continue
			}
			gainsIncluded := st.realizedGains.Mul(tax.CapitalGainsInclusion)
			st.taxable = st.income.TaxableTotal().Add(st.grossedUpDividends).Add(gainsIncluded)
			st.tax = e.taxCalc.ComputeTax(st.taxable, province, inflationFactor, st.person.Age, st.eligiblePension, st.grossedUpDividends)
			st.clawback = e.taxCalc.ComputeClawback(st.taxable, st.oasReceived, inflationFactor, rates.OASClawbackThreshold)
		}
		if inputs.SplitIncome && len(states) == 2 && states[0].alive && states[1].alive {
			e.applyIncomeSplit(states, province, inflationFactor)
		}

		// 6. Asset growth. The open account's yield portion was paid out as
		// cash, so only its capital-weighted share compounds.
		for _, p := range people {
			if !p.IsAlive() {
				continue
			}
			p.RRSP.Balance = p.RRSP.Balance.Mul(decimalOne.Add(growthRate))
			p.TFSA.Balance = p.TFSA.Balance.Mul(decimalOne.Add(growthRate))
			p.Open.Balance = p.Open.Balance.Mul(decimalOne.Add(growthRate.Mul(p.Open.Mix.Capital)))
		}

		// 7. Freeze the year's record.
		for _, st := range states {
			yr.Persons = append(yr.Persons, st.freeze())
			if st.alive {
				yr.TotalGrossIncome = yr.TotalGrossIncome.Add(st.income.GrossTotal())
				yr.TotalTaxable = yr.TotalTaxable.Add(st.taxable)
				yr.TotalTax = yr.TotalTax.Add(st.tax).Add(st.clawback)
				yr.TotalOASClawback = yr.TotalOASClawback.Add(st.clawback)
				yr.RealizedGains = yr.RealizedGains.Add(st.realizedGains)
			}
		}
		yr.TotalNetIncome = yr.TotalGrossIncome.Sub(yr.TotalTax)
		for _, p := range people {
			yr.TotalAssets = yr.TotalAssets.Add(p.TotalAssets())
		}
		results = append(results, yr)

		for _, p := range people {
			p.Age++
		}
		inflationFactor = inflationFactor.Mul(onePlusInflation)
	}

	return results
}

// spendingTarget is the inflation-scaled pre- or post-retirement target
// plus any one-time events triggered at the primary person's current age.
// An inflow larger than the base target drives the result negative; the
// caller treats that excess as surplus cash so it reaches the
// reinvestment waterfall instead of vanishing.
func (e *Engine) spendingTarget(inputs *domain.SimulationInputs, primary *domain.Person, inflationFactor decimal.Decimal) decimal.Decimal {
	base := inputs.PostRetirementSpend
	if primary.IsAlive() && !primary.IsRetired() {
		base = inputs.PreRetirementSpend
	}
	target := base.Mul(inflationFactor)
	for _, ev := range inputs.Events {
		if ev.Age != primary.Age {
			continue
		}
		if ev.IsExpense {
			target = target.Add(ev.Amount)
		} else {
			target = target.Sub(ev.Amount)
		}
	}
	return target
}

// applyIncomeSplit reruns both spouses' final tax under the optimizer's
// transfer amount when a transfer beats the standalone taxes.
func (e *Engine) applyIncomeSplit(states []*personYearState, province string, inflationFactor decimal.Decimal) {
	a, b := states[0], states[1]
	split := e.ComputeOptimalSplit(
		splitProfileFromState(a),
		splitProfileFromState(b),
		province, inflationFactor)
	if split.Amount.LessThanOrEqual(decimal.Zero) {
		return
	}

	from, to := a, b
	if split.FromName == b.person.Name {
		from, to = b, a
	}
	rates := e.taxCalc.Rates()

	from.taxable = from.taxable.Sub(split.Amount)
	from.eligiblePension = from.eligiblePension.Sub(split.Amount)
	to.taxable = to.taxable.Add(split.Amount)
	to.eligiblePension = to.eligiblePension.Add(split.Amount)

	for _, st := range []*personYearState{from, to} {
		st.tax = e.taxCalc.ComputeTax(st.taxable, province, inflationFactor, st.person.Age, st.eligiblePension, st.grossedUpDividends)
		st.clawback = e.taxCalc.ComputeClawback(st.taxable, st.oasReceived, inflationFactor, rates.OASClawbackThreshold)
	}
}

func splitProfileFromState(st *personYearState) SplitProfile {
	return SplitProfile{
		Name:               st.person.Name,
		Age:                st.person.Age,
		TaxableIncome:      st.taxable,
		EligiblePension:    st.eligiblePension,
		OASAmount:          st.oasReceived,
		GrossedUpDividends: st.grossedUpDividends,
	}
}

// rolloverToSurvivor merges a deceased spouse's accounts into the
// survivor's, preserving the open account's cost base. Registered balances
// roll over tax-free between spouses.
func rolloverToSurvivor(people []*domain.Person) {
	if len(people) != 2 {
		return
	}
	var dead, alive *domain.Person
	for _, p := range people {
		if p.IsAlive() {
			alive = p
		} else {
			dead = p
		}
	}
	if dead == nil || alive == nil {
		return
	}
	if dead.TotalAssets().LessThanOrEqual(decimal.Zero) {
		return
	}
	alive.RRSP.Balance = alive.RRSP.Balance.Add(dead.RRSP.Balance)
	alive.TFSA.Balance = alive.TFSA.Balance.Add(dead.TFSA.Balance)
	alive.Open.Balance = alive.Open.Balance.Add(dead.Open.Balance)
	alive.Open.ACB = alive.Open.ACB.Add(dead.Open.ACB)
	dead.RRSP.Balance = decimal.Zero
	dead.TFSA.Balance = decimal.Zero
	dead.Open.Balance = decimal.Zero
	dead.Open.ACB = decimal.Zero
}

// freeze converts the working state into the year's immutable record,
// allocating the person's tax pro-rata across taxable income components.
func (st *personYearState) freeze() domain.PersonYear {
	p := st.person
	py := domain.PersonYear{
		Name:          p.Name,
		Age:           p.Age,
		Deceased:      !st.alive,
		RRSPBalance:   p.RRSP.Balance,
		TFSABalance:   p.TFSA.Balance,
		OpenBalance:   p.Open.Balance,
		OpenACB:       p.Open.ACB,
		Income:        st.income,
		TaxableIncome: st.taxable,
		RealizedGains: st.realizedGains,
		Tax:           st.tax,
		OASClawback:   st.clawback,
	}

	burden := st.tax.Add(st.clawback)
	py.Net = st.income
	if st.taxable.GreaterThan(decimal.Zero) && burden.GreaterThan(decimal.Zero) {
		netOf := func(gross decimal.Decimal) decimal.Decimal {
			return gross.Sub(gross.Div(st.taxable).Mul(burden))
		}
		py.Net.Salary = netOf(st.income.Salary)
		py.Net.CPP = netOf(st.income.CPP)
		py.Net.OAS = netOf(st.income.OAS)
		py.Net.RRIFMinimum = netOf(st.income.RRIFMinimum)
		py.Net.MeltWithdraw = netOf(st.income.MeltWithdraw)
		py.Net.DeferredExtra = netOf(st.income.DeferredExtra)
		py.Net.Interest = netOf(st.income.Interest)
		py.Net.Dividends = netOf(st.income.Dividends)
	}
	// TFSA withdrawals and open-account principal are already net.
	return py
}

// Summarize condenses a projection into lifetime totals plus the terminal
// estate figures: the deferred balance is taxed as final-year income and
// the open account's unrealized gain is deemed disposed at the inclusion
// rate.
func (e *Engine) Summarize(inputs *domain.SimulationInputs, results []domain.YearResult) domain.ProjectionSummary {
	s := domain.ProjectionSummary{Years: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, yr := range results {
		s.LifetimeIncome = s.LifetimeIncome.Add(yr.TotalGrossIncome)
		s.LifetimeTax = s.LifetimeTax.Add(yr.TotalTax)
	}
	final := results[len(results)-1]
	s.TerminalAssets = final.TotalAssets

	for _, py := range final.Persons {
		unrealized := py.OpenBalance.Sub(py.OpenACB)
		if unrealized.LessThan(decimal.Zero) {
			unrealized = decimal.Zero
		}
		deemedIncome := py.RRSPBalance.Add(unrealized.Mul(tax.CapitalGainsInclusion))
		if deemedIncome.GreaterThan(decimal.Zero) {
			s.EstateTax = s.EstateTax.Add(e.taxCalc.ComputeTax(
				deemedIncome, inputs.Province, final.InflationFactor, py.Age, decimal.Zero, decimal.Zero))
		}
	}
	s.NetEstate = s.TerminalAssets.Sub(s.EstateTax)
	return s
}
