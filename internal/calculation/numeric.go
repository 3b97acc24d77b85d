package calculation

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

var decimalTwo = decimal.NewFromInt(2)

// bisectIncreasing finds a root of an increasing function f on [lo, hi] by
// bisection. It stops when |f(mid)| falls within tolerance or the
// iteration budget runs out, returning the best midpoint either way; the
// caller tolerates a small residual rather than handling an error.
func bisectIncreasing(f func(decimal.Decimal) decimal.Decimal, lo, hi, tolerance decimal.Decimal, maxIterations int) decimal.Decimal {
	mid := lo.Add(hi).Div(decimalTwo)
	for i := 0; i < maxIterations; i++ {
		mid = lo.Add(hi).Div(decimalTwo)
		v := f(mid)
		if v.Abs().LessThanOrEqual(tolerance) {
			return mid
		}
		if v.GreaterThan(decimal.Zero) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return mid
}

// ternaryMin locates the minimizer of a unimodal function on [lo, hi].
// Each iteration discards the third of the interval that cannot contain
// the minimum; the returned point is the final interval's midpoint.
func ternaryMin(f func(decimal.Decimal) decimal.Decimal, lo, hi decimal.Decimal, iterations int) decimal.Decimal {
	third := decimal.NewFromInt(3)
	for i := 0; i < iterations; i++ {
		span := hi.Sub(lo)
		m1 := lo.Add(span.Div(third))
		m2 := hi.Sub(span.Div(third))
		if f(m1).LessThanOrEqual(f(m2)) {
			hi = m2
		} else {
			lo = m1
		}
	}
	return lo.Add(hi).Div(decimalTwo)
}

// standardNormal draws one standard normal variate via Box-Muller. The
// uniform draw is redrawn on exact zero to keep the log finite.
func standardNormal(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
