package calculation

import (
	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/mapleplan/mapleplan/internal/tax"
	"github.com/shopspring/decimal"
)

// Withdrawal and reinvestment waterfalls. Each deficit step pools both
// spouses' balances pro-rata by balance share, draws only what is
// available, and reduces the remaining deficit by the net amount actually
// obtained — when a pool is exhausted the shortfall in net is computed
// from the marginal tax on the capped gross, not assumed equal to the
// request.

var (
	waterfallEpsilon = decimal.NewFromFloat(0.01)
	tfsaRoomRounding = decimal.NewFromInt(500)
	rrspEarnedRate   = decimal.NewFromFloat(0.18)
)

// resolveDeficit draws the deficit through the policy-ordered waterfall
// and returns the net cash obtained. Account balances and the per-person
// year states are mutated in place.
func (e *Engine) resolveDeficit(deficit decimal.Decimal, policy domain.WithdrawalPolicy, states []*personYearState, province string, inflationFactor decimal.Decimal) decimal.Decimal {
	remaining := deficit
	steps := []func(decimal.Decimal, []*personYearState, string, decimal.Decimal) decimal.Decimal{
		e.drawOpen, e.drawTFSA, e.drawDeferred,
	}
	if policy == domain.WithdrawDeferredFirst {
		steps = []func(decimal.Decimal, []*personYearState, string, decimal.Decimal) decimal.Decimal{
			e.drawDeferred, e.drawTFSA, e.drawOpen,
		}
	}

	obtained := decimal.Zero
	for _, step := range steps {
		if remaining.LessThanOrEqual(waterfallEpsilon) {
			break
		}
		net := step(remaining, states, province, inflationFactor)
		obtained = obtained.Add(net)
		remaining = remaining.Sub(net)
	}
	return obtained
}

// drawOpen withdraws open-account principal pro-rata by balance share,
// realizing a proportional capital gain through the ACB ratio. Principal
// is net cash in the year it is withdrawn; the realized gain surfaces in
// the final tax pass.
func (e *Engine) drawOpen(need decimal.Decimal, states []*personYearState, _ string, _ decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, st := range states {
		if st.alive {
			total = total.Add(st.person.Open.Balance)
		}
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	net := decimal.Zero
	for _, st := range states {
		if !st.alive || st.person.Open.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		share := need.Mul(st.person.Open.Balance).Div(total)
		withdrawn, gain := st.person.Open.Withdraw(share)
		st.income.OpenPrincipal = st.income.OpenPrincipal.Add(withdrawn)
		st.realizedGains = st.realizedGains.Add(gain)
		net = net.Add(withdrawn)
	}
	return net
}

// drawTFSA withdraws tax-free balances pro-rata by balance share; every
// dollar out is a net dollar.
func (e *Engine) drawTFSA(need decimal.Decimal, states []*personYearState, _ string, _ decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, st := range states {
		if st.alive {
			total = total.Add(st.person.TFSA.Balance)
		}
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	net := decimal.Zero
	for _, st := range states {
		if !st.alive || st.person.TFSA.Balance.LessThanOrEqual(decimal.Zero) {
			continue
		}
		share := need.Mul(st.person.TFSA.Balance).Div(total)
		withdrawn := st.person.TFSA.Withdraw(share)
		st.income.TFSAWithdraw = st.income.TFSAWithdraw.Add(withdrawn)
		net = net.Add(withdrawn)
	}
	return net
}

// drawDeferred sources the remaining net need from the deferred accounts.
// Each living person's share of the net target is pro-rata by balance;
// the solver converts it to a gross withdrawal. A second pass picks up
// slack when one spouse's pool caps out before meeting their share.
func (e *Engine) drawDeferred(need decimal.Decimal, states []*personYearState, province string, inflationFactor decimal.Decimal) decimal.Decimal {
	obtained := decimal.Zero
	remaining := need

	for pass := 0; pass < 2 && remaining.GreaterThan(waterfallEpsilon); pass++ {
		total := decimal.Zero
		for _, st := range states {
			if st.alive {
				total = total.Add(st.person.RRSP.Balance)
			}
		}
		if total.LessThanOrEqual(decimal.Zero) {
			break
		}

		for _, st := range states {
			if !st.alive || st.person.RRSP.Balance.LessThanOrEqual(decimal.Zero) {
				continue
			}
			targetNet := remaining.Mul(st.person.RRSP.Balance).Div(total)
			if targetNet.LessThanOrEqual(waterfallEpsilon) {
				continue
			}

			gross, marginalTax := e.SolveGrossWithdrawal(targetNet, st.taxable, st.oasReceived, province, inflationFactor, st.person.Age)
			var net decimal.Decimal
			if gross.GreaterThan(st.person.RRSP.Balance) {
				// Pool exhausted: the net obtained comes from the actual
				// marginal tax on the capped gross, not the request.
				gross = st.person.RRSP.Balance
				marginalTax = e.MarginalTaxOn(gross, st.taxable, st.oasReceived, province, inflationFactor, st.person.Age)
			}
			net = gross.Sub(marginalTax)
			if net.LessThan(decimal.Zero) {
				net = decimal.Zero
			}

			withdrawn := st.person.RRSP.Withdraw(gross)
			st.income.DeferredExtra = st.income.DeferredExtra.Add(withdrawn)
			st.taxable = st.taxable.Add(withdrawn)
			if st.person.Age >= 65 {
				st.eligiblePension = st.eligiblePension.Add(withdrawn)
			}
			obtained = obtained.Add(net)
		}
		remaining = need.Sub(obtained)
	}
	return obtained
}

// reinvestSurplus pushes surplus cash through the fixed-order
// reinvestment waterfall: indexed TFSA room per living person, deferred
// room for those still earning and under the conversion age, then the
// open account as new principal split evenly across the living.
func (e *Engine) reinvestSurplus(surplus decimal.Decimal, states []*personYearState, rates tax.Rates, inflationFactor decimal.Decimal) (toTFSA, toRRSP, toOpen decimal.Decimal) {
	remaining := surplus

	tfsaRoom := rates.TFSAAnnualLimit.Mul(inflationFactor).
		Div(tfsaRoomRounding).Round(0).Mul(tfsaRoomRounding)
	for _, st := range states {
		if !st.alive || remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}
		c := decimal.Min(remaining, tfsaRoom)
		st.person.TFSA.Balance = st.person.TFSA.Balance.Add(c)
		toTFSA = toTFSA.Add(c)
		remaining = remaining.Sub(c)
	}

	for _, st := range states {
		if !st.alive || remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}
		p := st.person
		if p.Age >= RRIFConversionAge || st.income.Salary.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if p.Melt != nil && p.Age >= p.Melt.StartAge {
			continue
		}
		room := decimal.Min(st.income.Salary.Mul(rrspEarnedRate), rates.RRSPDollarCap.Mul(inflationFactor))
		c := decimal.Min(remaining, room)
		p.RRSP.Balance = p.RRSP.Balance.Add(c)
		toRRSP = toRRSP.Add(c)
		remaining = remaining.Sub(c)
	}

	if remaining.GreaterThan(decimal.Zero) {
		living := make([]*personYearState, 0, len(states))
		for _, st := range states {
			if st.alive {
				living = append(living, st)
			}
		}
		if len(living) > 0 {
			share := remaining.Div(decimal.NewFromInt(int64(len(living))))
			for _, st := range living {
				st.person.Open.Deposit(share)
			}
			toOpen = remaining
		}
	}
	return toTFSA, toRRSP, toOpen
}
