package domain

import (
	"github.com/shopspring/decimal"
)

// IncomeBreakdown holds one person's gross income for a year, split by
// source. Taxable sources carry a matching net figure after the year's tax
// is allocated pro-rata; already-net flows (TFSA withdrawals, open-account
// principal) are reported as-is.
type IncomeBreakdown struct {
	Salary        decimal.Decimal `json:"salary"`
	CPP           decimal.Decimal `json:"cpp"`
	OAS           decimal.Decimal `json:"oas"`
	RRIFMinimum   decimal.Decimal `json:"rrifMinimum"`
	MeltWithdraw  decimal.Decimal `json:"meltWithdraw"`
	DeferredExtra decimal.Decimal `json:"deferredExtra"`
	Interest      decimal.Decimal `json:"interest"`
	Dividends     decimal.Decimal `json:"dividends"`

	// Non-taxable cash flows.
	TFSAWithdraw  decimal.Decimal `json:"tfsaWithdraw"`
	OpenPrincipal decimal.Decimal `json:"openPrincipal"`
}

// TaxableTotal sums the sources that enter taxable income at full value.
// Dividends are excluded here because only the grossed-up figure is
// taxable, and realized capital gains enter at the inclusion rate.
func (ib IncomeBreakdown) TaxableTotal() decimal.Decimal {
	return ib.Salary.Add(ib.CPP).Add(ib.OAS).Add(ib.RRIFMinimum).
		Add(ib.MeltWithdraw).Add(ib.DeferredExtra).Add(ib.Interest)
}

// GrossTotal sums every cash inflow, taxable or not.
func (ib IncomeBreakdown) GrossTotal() decimal.Decimal {
	return ib.TaxableTotal().Add(ib.Dividends).Add(ib.TFSAWithdraw).Add(ib.OpenPrincipal)
}

// PersonYear is one person's slice of a YearResult.
type PersonYear struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Deceased bool   `json:"deceased"`

	RRSPBalance decimal.Decimal `json:"rrspBalance"`
	TFSABalance decimal.Decimal `json:"tfsaBalance"`
	OpenBalance decimal.Decimal `json:"openBalance"`
	OpenACB     decimal.Decimal `json:"openAcb"`

	Income IncomeBreakdown `json:"income"`
	Net    IncomeBreakdown `json:"net"`

	TaxableIncome decimal.Decimal `json:"taxableIncome"`
	RealizedGains decimal.Decimal `json:"realizedGains"`
	Tax           decimal.Decimal `json:"tax"`
	OASClawback   decimal.Decimal `json:"oasClawback"`
}

// YearResult is the record emitted for each simulated year. Records are
// append-only; the engine never revisits an emitted year.
type YearResult struct {
	Year            int             `json:"year"`
	InflationFactor decimal.Decimal `json:"inflationFactor"`

	Persons []PersonYear `json:"persons"`

	TotalGrossIncome decimal.Decimal `json:"totalGrossIncome"`
	TotalTaxable     decimal.Decimal `json:"totalTaxable"`
	// TotalTax is the combined burden, income tax plus OAS clawback;
	// TotalOASClawback restates the clawback portion on its own.
	TotalTax         decimal.Decimal `json:"totalTax"`
	TotalOASClawback decimal.Decimal `json:"totalOasClawback"`
	TotalNetIncome   decimal.Decimal `json:"totalNetIncome"`

	SpendingTarget decimal.Decimal `json:"spendingTarget"`
	Deficit        decimal.Decimal `json:"deficit"`
	Surplus        decimal.Decimal `json:"surplus"`

	ReinvestTFSA decimal.Decimal `json:"reinvestTfsa"`
	ReinvestRRSP decimal.Decimal `json:"reinvestRrsp"`
	ReinvestOpen decimal.Decimal `json:"reinvestOpen"`

	RealizedGains decimal.Decimal `json:"realizedGains"`
	TotalAssets   decimal.Decimal `json:"totalAssets"`
}

// PrimaryAge returns the first person's age for the year.
func (yr *YearResult) PrimaryAge() int {
	if len(yr.Persons) == 0 {
		return 0
	}
	return yr.Persons[0].Age
}

// YearBand holds one projected year's percentile spread of total assets
// across all Monte Carlo runs.
type YearBand struct {
	Year       int             `json:"year"`
	PrimaryAge int             `json:"primaryAge"`
	P5         decimal.Decimal `json:"p5"`
	P25        decimal.Decimal `json:"p25"`
	P50        decimal.Decimal `json:"p50"`
	P75        decimal.Decimal `json:"p75"`
	P95        decimal.Decimal `json:"p95"`
}

// MonteCarloResult aggregates many randomized projection runs.
type MonteCarloResult struct {
	Iterations           int             `json:"iterations"`
	Bands                []YearBand      `json:"bands"`
	SuccessRate          decimal.Decimal `json:"successRate"`
	MedianTerminalAssets decimal.Decimal `json:"medianTerminalAssets"`
}

// SplitResult describes the tax-minimizing pension income split for one
// year. Amount is zero when no transfer improves on the standalone taxes.
type SplitResult struct {
	Amount      decimal.Decimal `json:"amount"`
	FromName    string          `json:"fromName"`
	ToName      string          `json:"toName"`
	Savings     decimal.Decimal `json:"savings"`
	FromTax     decimal.Decimal `json:"fromTax"`
	ToTax       decimal.Decimal `json:"toTax"`
	BaselineTax decimal.Decimal `json:"baselineTax"`
}

// ProjectionSummary condenses a full run: lifetime totals plus the
// terminal-year estate figures (deferred balance taxed as final income,
// deemed disposition of open-account gains at the inclusion rate).
type ProjectionSummary struct {
	Years          int             `json:"years"`
	LifetimeIncome decimal.Decimal `json:"lifetimeIncome"`
	LifetimeTax    decimal.Decimal `json:"lifetimeTax"`
	TerminalAssets decimal.Decimal `json:"terminalAssets"`
	EstateTax      decimal.Decimal `json:"estateTax"`
	NetEstate      decimal.Decimal `json:"netEstate"`
}
