package tax

import (
	"github.com/shopspring/decimal"
)

// Rates is the full tax-constant table for one base year. It is passed
// explicitly into every calculation; there is no package-level mutable
// state. Default2025 is the one published table.
type Rates struct {
	Year int

	FederalBrackets    []Bracket
	ProvincialBrackets map[string][]Bracket

	// Basic personal amounts, keyed by province code plus "federal".
	PersonalAmounts map[string]decimal.Decimal

	// Provincial dividend tax credit rates on grossed-up eligible
	// dividends. Provinces missing from the map use DefaultDividendCredit.
	DividendCreditRates   map[string]decimal.Decimal
	DefaultDividendCredit decimal.Decimal
	FederalDividendCredit decimal.Decimal

	// Benefit-program constants.
	YMPE                 decimal.Decimal // max pensionable earnings
	CPPMaxAnnual         decimal.Decimal
	OASMaxAnnual         decimal.Decimal
	OASClawbackThreshold decimal.Decimal

	// Contribution-room constants.
	TFSAAnnualLimit decimal.Decimal
	RRSPDollarCap   decimal.Decimal

	// Credit constants.
	PensionCreditCap   decimal.Decimal
	AgeCreditMax       decimal.Decimal
	AgeCreditThreshold decimal.Decimal

	// Ontario surtax thresholds, applied to Ontario basic tax.
	SurtaxFirstThreshold  decimal.Decimal
	SurtaxSecondThreshold decimal.Decimal

	// DefaultProvince is used when an input province code does not resolve.
	DefaultProvince string
}

// DividendGrossUp is the statutory multiplier applied to eligible dividend
// income for tax purposes only.
var DividendGrossUp = decimal.NewFromFloat(1.38)

// CapitalGainsInclusion is the fraction of realized capital gains included
// in taxable income.
var CapitalGainsInclusion = decimal.NewFromFloat(0.5)

// Default2025 returns the 2025 tax-constant table. Thresholds are the base
// amounts; projections scale them by a cumulative inflation factor.
func Default2025() Rates {
	return Rates{
		Year: 2025,
		FederalBrackets: []Bracket{
			{decimal.Zero, decimal.NewFromFloat(0.15)},
			{decimal.NewFromInt(57375), decimal.NewFromFloat(0.205)},
			{decimal.NewFromInt(114750), decimal.NewFromFloat(0.26)},
			{decimal.NewFromInt(177882), decimal.NewFromFloat(0.29)},
			{decimal.NewFromInt(253414), decimal.NewFromFloat(0.33)},
		},
		ProvincialBrackets: map[string][]Bracket{
			"ON": {
				{decimal.Zero, decimal.NewFromFloat(0.0505)},
				{decimal.NewFromInt(52886), decimal.NewFromFloat(0.0915)},
				{decimal.NewFromInt(105775), decimal.NewFromFloat(0.1116)},
				{decimal.NewFromInt(150000), decimal.NewFromFloat(0.1216)},
				{decimal.NewFromInt(220000), decimal.NewFromFloat(0.1316)},
			},
			"BC": {
				{decimal.Zero, decimal.NewFromFloat(0.0506)},
				{decimal.NewFromInt(49279), decimal.NewFromFloat(0.077)},
				{decimal.NewFromInt(98560), decimal.NewFromFloat(0.105)},
				{decimal.NewFromInt(113158), decimal.NewFromFloat(0.1229)},
				{decimal.NewFromInt(137407), decimal.NewFromFloat(0.147)},
				{decimal.NewFromInt(186306), decimal.NewFromFloat(0.168)},
				{decimal.NewFromInt(259829), decimal.NewFromFloat(0.205)},
			},
			"AB": {
				{decimal.Zero, decimal.NewFromFloat(0.10)},
				{decimal.NewFromInt(151234), decimal.NewFromFloat(0.12)},
				{decimal.NewFromInt(181481), decimal.NewFromFloat(0.13)},
				{decimal.NewFromInt(241974), decimal.NewFromFloat(0.14)},
				{decimal.NewFromInt(362961), decimal.NewFromFloat(0.15)},
			},
			"MB": {
				{decimal.Zero, decimal.NewFromFloat(0.108)},
				{decimal.NewFromInt(47564), decimal.NewFromFloat(0.1275)},
				{decimal.NewFromInt(101200), decimal.NewFromFloat(0.174)},
			},
			"QC": {
				{decimal.Zero, decimal.NewFromFloat(0.14)},
				{decimal.NewFromInt(53255), decimal.NewFromFloat(0.19)},
				{decimal.NewFromInt(106495), decimal.NewFromFloat(0.24)},
				{decimal.NewFromInt(129590), decimal.NewFromFloat(0.2575)},
			},
		},
		PersonalAmounts: map[string]decimal.Decimal{
			"federal": decimal.NewFromInt(16129),
			"ON":      decimal.NewFromInt(12747),
			"BC":      decimal.NewFromInt(12932),
			"AB":      decimal.NewFromInt(22323),
			"MB":      decimal.NewFromInt(15780),
			"QC":      decimal.NewFromInt(18571),
		},
		DividendCreditRates: map[string]decimal.Decimal{
			"ON": decimal.NewFromFloat(0.10),
			"BC": decimal.NewFromFloat(0.12),
			"AB": decimal.NewFromFloat(0.0812),
			"MB": decimal.NewFromFloat(0.08),
			"QC": decimal.NewFromFloat(0.117),
		},
		DefaultDividendCredit: decimal.NewFromFloat(0.10),
		FederalDividendCredit: decimal.NewFromFloat(0.150198),

		YMPE:                 decimal.NewFromInt(71300),
		CPPMaxAnnual:         decimal.NewFromInt(17196),
		OASMaxAnnual:         decimal.NewFromInt(8732),
		OASClawbackThreshold: decimal.NewFromInt(93454),

		TFSAAnnualLimit: decimal.NewFromInt(7000),
		RRSPDollarCap:   decimal.NewFromInt(32490),

		PensionCreditCap:   decimal.NewFromInt(2000),
		AgeCreditMax:       decimal.NewFromInt(9028),
		AgeCreditThreshold: decimal.NewFromInt(45522),

		SurtaxFirstThreshold:  decimal.NewFromInt(5710),
		SurtaxSecondThreshold: decimal.NewFromInt(7307),

		DefaultProvince: "ON",
	}
}

// ProvinceRates bundles the resolved per-province constants for one code.
type ProvinceRates struct {
	Code           string
	Brackets       []Bracket
	PersonalAmount decimal.Decimal
	DividendCredit decimal.Decimal
}

// ResolveProvince looks up a province code, falling back to the designated
// default when the code is unknown. The second return value reports whether
// the fallback was used, so callers can surface the decision instead of
// silently projecting under the wrong schedule.
func (r Rates) ResolveProvince(code string) (ProvinceRates, bool) {
	usedFallback := false
	brackets, ok := r.ProvincialBrackets[code]
	if !ok {
		usedFallback = true
		code = r.DefaultProvince
		brackets = r.ProvincialBrackets[code]
	}

	pr := ProvinceRates{
		Code:           code,
		Brackets:       brackets,
		PersonalAmount: r.PersonalAmounts[code],
		DividendCredit: r.DefaultDividendCredit,
	}
	if dc, ok := r.DividendCreditRates[code]; ok {
		pr.DividendCredit = dc
	}
	return pr, usedFallback
}
