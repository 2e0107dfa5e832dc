// Package backtest simulates the buy-and-hold strategy driven by
// extreme-weather signals and measures whether its edge beats chance.
package backtest

import (
	"math"
	"sort"
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/series"
	"go.uber.org/zap"
)

// Result holds the outcome of one backtest run.
type Result struct {
	InitialCash      float64
	FinalCash        float64
	TotalReturn      float64
	AnnualizedReturn float64
	HoldingMonths    int
	Trades           []Trade

	// PortfolioValues mirrors the price index date-for-date: marked to
	// market while a position is open, realized cash otherwise.
	PortfolioValues []float64
}

// Trade records one realized entry/exit pair.
type Trade struct {
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	Shares     float64
	DragFactor float64 // 1 when no seasonal drag applies
	ExitCash   float64
}

// Engine runs single-position buy-and-hold simulations over a price series.
// The engine never holds two positions at once: signals arriving while a
// holding period is open are discarded, not queued.
type Engine struct {
	initialCash float64
	drag        *DragSchedule
	logger      *zap.Logger
}

// NewEngine creates an Engine. drag may be nil for commodities without a
// seasonal roll adjustment.
func NewEngine(initialCash float64, drag *DragSchedule, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{initialCash: initialCash, drag: drag, logger: logger}
}

// Run simulates one trade per signal with the given holding period in whole
// months. An empty signal set is not an error: the result is a flat
// portfolio at the initial cash. An empty price series is ErrNoData.
func (e *Engine) Run(prices *series.PriceSeries, signals []time.Time, holdingMonths int) (*Result, error) {
	if prices == nil || prices.Len() == 0 {
		return nil, core.ErrNoData
	}

	ordered := make([]time.Time, len(signals))
	copy(ordered, signals)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	cash := e.initialCash
	values := make([]float64, prices.Len())
	for i := range values {
		values[i] = cash
	}

	var trades []Trade
	var busyUntil time.Time
	busy := false

	for _, sig := range ordered {
		entryIdx, ok := prices.Index(sig)
		if !ok {
			continue
		}
		if busy && sig.Before(busyUntil) {
			continue
		}

		target := series.AddMonths(prices.Date(entryIdx), holdingMonths)
		if target.After(prices.Last()) {
			// the holding period would run off the end of the data: stop
			// here rather than force-close an unrealized trade
			e.logger.Debug("exit target beyond price history, halting",
				zap.Time("signal", sig),
				zap.Time("target", target),
			)
			break
		}
		exitIdx := prices.Nearest(target)

		entryPrice := prices.Close(entryIdx)
		shares := cash / entryPrice

		factor := 1.0
		if e.drag != nil {
			factor = e.drag.Compound(prices.Date(entryIdx), holdingMonths)
		}

		for i := entryIdx; i <= exitIdx; i++ {
			values[i] = shares * prices.Close(i)
		}
		cash = shares * prices.Close(exitIdx) * factor
		for i := exitIdx; i < len(values); i++ {
			values[i] = cash
		}

		exitDate := prices.Date(exitIdx)
		trades = append(trades, Trade{
			EntryDate:  prices.Date(entryIdx),
			ExitDate:   exitDate,
			EntryPrice: entryPrice,
			ExitPrice:  prices.Close(exitIdx),
			Shares:     shares,
			DragFactor: factor,
			ExitCash:   cash,
		})
		busyUntil = exitDate
		busy = true
	}

	totalReturn := (cash - e.initialCash) / e.initialCash
	return &Result{
		InitialCash:      e.initialCash,
		FinalCash:        cash,
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualize(totalReturn, prices.SpanDays()),
		HoldingMonths:    holdingMonths,
		Trades:           trades,
		PortfolioValues:  values,
	}, nil
}

// annualize converts a total return into a yearly rate over the calendar
// span of the whole price history. Idle stretches between trades dilute the
// rate; that matches the strategy's original accounting and is kept as-is.
func annualize(totalReturn float64, spanDays int) float64 {
	if spanDays <= 0 {
		return 0
	}
	years := float64(spanDays) / 365.25
	return math.Pow(1+totalReturn, 1/years) - 1
}
