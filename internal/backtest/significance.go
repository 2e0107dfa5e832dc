package backtest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/series"
	"go.uber.org/zap"
)

// SignificanceResult holds a permutation test's output. The null
// hypothesis is that signal months and non-signal months draw forward
// returns from the same distribution.
type SignificanceResult struct {
	ObservedDiff float64   // mean(signal months) - mean(other months)
	PValue       float64   // one-sided: P(null diff >= observed)
	Differences  []float64 // the full null distribution, for plotting
	SignalMonths int
	OtherMonths  int
}

// Tester runs permutation significance tests over monthly forward returns.
// The random source is injected so runs are reproducible.
type Tester struct {
	rng    *rand.Rand
	reps   int
	logger *zap.Logger
}

// NewTester creates a Tester with the given permutation count.
func NewTester(rng *rand.Rand, reps int, logger *zap.Logger) *Tester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tester{rng: rng, reps: reps, logger: logger}
}

// Run labels every month in the universe [start, start+months) by whether
// it contains a buy signal, computes each month's forward return over
// holdingMonths, and permutes the labels reps times to estimate how often
// chance alone produces a mean difference at least as large as observed.
//
// Both label groups must be non-empty; otherwise the group means are
// undefined and the test fails with ErrPrecondition.
func (t *Tester) Run(prices *series.PriceSeries, signals []time.Time, start time.Time, months, holdingMonths int) (*SignificanceResult, error) {
	if prices == nil || prices.Len() == 0 {
		return nil, core.ErrNoData
	}
	if months <= 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("universe of %d months", months))
	}

	signalMonths := make(map[series.MonthKey]struct{}, len(signals))
	for _, s := range signals {
		signalMonths[series.MonthOf(s)] = struct{}{}
	}

	labels := make([]bool, months)
	returns := make([]float64, months)
	first := series.Day(start)
	for i := 0; i < months; i++ {
		monthStart := series.AddMonths(first, i)
		_, labels[i] = signalMonths[series.MonthOf(monthStart)]
		returns[i] = forwardReturn(prices, monthStart, holdingMonths)
	}

	trueCount := 0
	for _, l := range labels {
		if l {
			trueCount++
		}
	}
	if trueCount == 0 || trueCount == months {
		return nil, core.WrapError(core.ErrPrecondition,
			fmt.Errorf("need both signal and non-signal months, got %d of %d labelled", trueCount, months))
	}

	observed := meanDifference(returns, labels)

	diffs := make([]float64, t.reps)
	shuffled := make([]bool, months)
	atLeast := 0
	for rep := 0; rep < t.reps; rep++ {
		perm := t.rng.Perm(months)
		for i, j := range perm {
			shuffled[i] = labels[j]
		}
		diffs[rep] = meanDifference(returns, shuffled)
		if diffs[rep] >= observed {
			atLeast++
		}
	}

	result := &SignificanceResult{
		ObservedDiff: observed,
		PValue:       float64(atLeast) / float64(t.reps),
		Differences:  diffs,
		SignalMonths: trueCount,
		OtherMonths:  months - trueCount,
	}
	t.logger.Debug("permutation test complete",
		zap.Float64("observed_diff", observed),
		zap.Float64("p_value", result.PValue),
		zap.Int("repetitions", t.reps),
	)
	return result, nil
}

// forwardReturn computes the return from the trading day nearest the month
// start to the trading day nearest holdingMonths later. Targets beyond the
// series clamp to its boundary bars.
func forwardReturn(prices *series.PriceSeries, monthStart time.Time, holdingMonths int) float64 {
	entryIdx := prices.Nearest(monthStart)
	entryDate := prices.Date(entryIdx)
	entryPrice := prices.Close(entryIdx)

	exitIdx := prices.Nearest(series.AddMonths(entryDate, holdingMonths))
	exitPrice := prices.Close(exitIdx)

	return (exitPrice - entryPrice) / entryPrice
}

// meanDifference returns mean(values | label) - mean(values | !label).
// Callers guarantee both groups are non-empty.
func meanDifference(values []float64, labels []bool) float64 {
	var sumTrue, sumFalse float64
	var nTrue, nFalse int
	for i, v := range values {
		if labels[i] {
			sumTrue += v
			nTrue++
		} else {
			sumFalse += v
			nFalse++
		}
	}
	return sumTrue/float64(nTrue) - sumFalse/float64(nFalse)
}
