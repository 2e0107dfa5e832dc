package backtest

import (
	"fmt"
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/series"
	"go.uber.org/zap"
)

// SweepResult holds the outcome of a holding-period sweep.
type SweepResult struct {
	BestMonths int
	BestCash   float64

	// FinalCash and Profit are keyed by holding period in months. Profit
	// is the fraction of initial cash gained or lost.
	FinalCash map[int]float64
	Profit    map[int]float64
}

// Sweep runs the engine once per holding period in the inclusive range
// [minMonths, maxMonths] and picks the period with the highest final cash.
// Ties keep the shortest period since the sweep ascends.
func (e *Engine) Sweep(prices *series.PriceSeries, signals []time.Time, minMonths, maxMonths int) (*SweepResult, error) {
	if minMonths < 1 || maxMonths < minMonths {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("sweep range [%d,%d] is not a valid month range", minMonths, maxMonths))
	}

	out := &SweepResult{
		FinalCash: make(map[int]float64, maxMonths-minMonths+1),
		Profit:    make(map[int]float64, maxMonths-minMonths+1),
	}

	for m := minMonths; m <= maxMonths; m++ {
		res, err := e.Run(prices, signals, m)
		if err != nil {
			return nil, err
		}
		out.FinalCash[m] = res.FinalCash
		out.Profit[m] = (res.FinalCash - e.initialCash) / e.initialCash

		if res.FinalCash > out.BestCash {
			out.BestCash = res.FinalCash
			out.BestMonths = m
		}

		e.logger.Debug("sweep step",
			zap.Int("holding_months", m),
			zap.Float64("final_cash", res.FinalCash),
		)
	}
	return out, nil
}
