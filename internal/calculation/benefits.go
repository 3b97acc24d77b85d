package calculation

import (
	"github.com/mapleplan/mapleplan/internal/tax"
	"github.com/shopspring/decimal"
)

// CPP/OAS benefit estimation. Both programs pay the indexed statutory
// maximum scaled by timing adjustments; CPP additionally scales by the
// contributor's career ratio.

const (
	cppEarliestStartAge = 60
	cppNormalStartAge   = 65
	cppLatestStartAge   = 70
	cppFullCareerYears  = 39

	oasNormalStartAge = 65
	oasLatestStartAge = 70
	oasEnhancementAge = 75
)

var (
	decimalOne = decimal.NewFromInt(1)

	cppReductionPerMonth = decimal.NewFromFloat(0.006)
	cppBonusPerMonth     = decimal.NewFromFloat(0.007)
	oasDeferralPerMonth  = decimal.NewFromFloat(0.006)
	oasEnhancementRate   = decimal.NewFromFloat(0.10)
	monthsPerYear        = decimal.NewFromInt(12)
)

// AnnualCPP estimates the year's CPP benefit. Nothing is paid before the
// chosen start age; the start age itself is clamped to the statutory 60-70
// window. Starting early reduces the benefit 0.6% per month before 65,
// deferring adds 0.7% per month after, and a short contribution career
// scales the whole benefit by years/39.
func AnnualCPP(age, startAge, contributionYears int, rates tax.Rates, inflationFactor decimal.Decimal) decimal.Decimal {
	if startAge < cppEarliestStartAge {
		startAge = cppEarliestStartAge
	}
	if startAge > cppLatestStartAge {
		startAge = cppLatestStartAge
	}
	if age < startAge {
		return decimal.Zero
	}

	adjustment := decimalOne
	months := decimal.NewFromInt(int64(startAge - cppNormalStartAge)).Mul(monthsPerYear)
	if startAge < cppNormalStartAge {
		adjustment = decimalOne.Add(months.Mul(cppReductionPerMonth)) // months is negative
	} else if startAge > cppNormalStartAge {
		adjustment = decimalOne.Add(months.Mul(cppBonusPerMonth))
	}

	careerRatio := decimalOne
	if contributionYears > 0 && contributionYears < cppFullCareerYears {
		careerRatio = decimal.NewFromInt(int64(contributionYears)).Div(decimal.NewFromInt(cppFullCareerYears))
	}

	return rates.CPPMaxAnnual.Mul(adjustment).Mul(careerRatio).Mul(inflationFactor)
}

// AnnualOAS estimates the year's OAS benefit before any clawback. Nothing
// is paid before the chosen start age, clamped to 65-70. Deferring past 65
// adds 0.6% per month; from age 75 the benefit carries the statutory 10%
// enhancement.
func AnnualOAS(age, startAge int, rates tax.Rates, inflationFactor decimal.Decimal) decimal.Decimal {
	if startAge < oasNormalStartAge {
		startAge = oasNormalStartAge
	}
	if startAge > oasLatestStartAge {
		startAge = oasLatestStartAge
	}
	if age < startAge {
		return decimal.Zero
	}

	adjustment := decimalOne
	if startAge > oasNormalStartAge {
		months := decimal.NewFromInt(int64(startAge - oasNormalStartAge)).Mul(monthsPerYear)
		adjustment = decimalOne.Add(months.Mul(oasDeferralPerMonth))
	}

	benefit := rates.OASMaxAnnual.Mul(adjustment).Mul(inflationFactor)
	if age >= oasEnhancementAge {
		benefit = benefit.Mul(decimalOne.Add(oasEnhancementRate))
	}
	return benefit
}
