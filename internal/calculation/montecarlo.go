package calculation

import (
	"math/rand"
	"sort"
	"time"

	"github.com/mapleplan/mapleplan/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultMonteCarloIterations is the run count used when the caller does
// not choose one.
const DefaultMonteCarloIterations = 200

// successTolerance: a run "succeeds" when its final-year total assets stay
// above this floor — a proxy for not running out of money, not a
// path-wise ruin check.
var successTolerance = decimal.NewFromInt(1000)

// MonteCarloOptions configures a Monte Carlo batch. A zero Seed picks a
// time-based one; set it explicitly for reproducible runs. OnProgress, if
// set, is invoked after each completed run.
type MonteCarloOptions struct {
	Iterations int
	Seed       int64
	OnProgress func(completed, total int)
}

// RunMonteCarlo repeats the projection with per-year randomized capital
// growth and aggregates the runs into per-year percentile bands. All runs
// share the input life expectancies, so every run has the same length.
// Runs are independent; they execute sequentially and aggregation happens
// only after the last one completes.
func (e *Engine) RunMonteCarlo(inputs *domain.SimulationInputs, opts MonteCarloOptions) *domain.MonteCarloResult {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = DefaultMonteCarloIterations
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	master := rand.New(rand.NewSource(seed))

	runs := make([][]domain.YearResult, 0, iterations)
	for i := 0; i < iterations; i++ {
		rng := rand.New(rand.NewSource(master.Int63()))
		run := e.project(inputs, growthSampler(inputs.Returns, rng))
		if len(run) == 0 {
			e.logger.Warnf("monte carlo: inputs rejected, aborting batch")
			return &domain.MonteCarloResult{Iterations: 0}
		}
		runs = append(runs, run)
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, iterations)
		}
	}

	years := len(runs[0])
	result := &domain.MonteCarloResult{
		Iterations: iterations,
		Bands:      make([]domain.YearBand, 0, years),
	}

	successes := 0
	terminal := make([]decimal.Decimal, 0, iterations)
	for _, run := range runs {
		final := run[len(run)-1].TotalAssets
		terminal = append(terminal, final)
		if final.GreaterThan(successTolerance) {
			successes++
		}
	}
	result.SuccessRate = decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(iterations)))

	sortAscending(terminal)
	result.MedianTerminalAssets = percentileOf(terminal, 0.5)

	for y := 0; y < years; y++ {
		assets := make([]decimal.Decimal, 0, iterations)
		for _, run := range runs {
			assets = append(assets, run[y].TotalAssets)
		}
		sortAscending(assets)
		result.Bands = append(result.Bands, domain.YearBand{
			Year:       y,
			PrimaryAge: runs[0][y].PrimaryAge(),
			P5:         percentileOf(assets, 0.05),
			P25:        percentileOf(assets, 0.25),
			P50:        percentileOf(assets, 0.50),
			P75:        percentileOf(assets, 0.75),
			P95:        percentileOf(assets, 0.95),
		})
	}
	return result
}

func sortAscending(values []decimal.Decimal) {
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
}

// percentileOf indexes a sorted-ascending slice at floor(p × N), clamped
// to the last element.
func percentileOf(sorted []decimal.Decimal, p float64) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
