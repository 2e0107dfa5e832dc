package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/quantfarm/harvest/internal/core"
)

func TestSweep_PicksBestHoldingPeriod(t *testing.T) {
	// from a Jan 2 entry at 100: 1 month -> 105, 2 months -> 120 (best),
	// 3 months -> 90
	prices := priceSeries(t,
		map[string]float64{
			"2020-01-02": 100,
			"2020-02-03": 105,
			"2020-03-02": 120,
			"2020-04-02": 90,
			"2020-05-04": 95,
		},
		[]string{"2020-01-02", "2020-02-03", "2020-03-02", "2020-04-02", "2020-05-04"},
	)
	eng := NewEngine(10000, nil, nil)

	res, err := eng.Sweep(prices, []time.Time{day(2020, 1, 2)}, 1, 3)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if res.BestMonths != 2 {
		t.Errorf("BestMonths = %d, want 2", res.BestMonths)
	}
	if math.Abs(res.BestCash-12000) > 1e-9 {
		t.Errorf("BestCash = %v, want 12000", res.BestCash)
	}
	if len(res.FinalCash) != 3 || len(res.Profit) != 3 {
		t.Errorf("result maps sized %d/%d, want 3/3", len(res.FinalCash), len(res.Profit))
	}
	if math.Abs(res.Profit[2]-0.20) > 1e-12 {
		t.Errorf("Profit[2] = %v, want 0.20", res.Profit[2])
	}
}

func TestSweep_TieKeepsShortestPeriod(t *testing.T) {
	// flat prices: every holding period realizes the same cash
	prices := dailySeries(t, day(2020, 1, 1), day(2020, 12, 31), 100)
	eng := NewEngine(10000, nil, nil)

	res, err := eng.Sweep(prices, []time.Time{day(2020, 1, 2)}, 1, 4)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.BestMonths != 1 {
		t.Errorf("BestMonths = %d, want first-encountered 1 on ties", res.BestMonths)
	}
}

func TestSweep_InvalidRange(t *testing.T) {
	prices := dailySeries(t, day(2020, 1, 1), day(2020, 3, 1), 100)
	eng := NewEngine(10000, nil, nil)

	if _, err := eng.Sweep(prices, nil, 3, 1); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
	if _, err := eng.Sweep(prices, nil, 0, 2); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestSweep_NoSignals(t *testing.T) {
	prices := dailySeries(t, day(2020, 1, 1), day(2020, 12, 31), 100)
	eng := NewEngine(10000, nil, nil)

	res, err := eng.Sweep(prices, nil, 1, 3)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	for m, cash := range res.FinalCash {
		if cash != 10000 {
			t.Errorf("FinalCash[%d] = %v, want flat 10000", m, cash)
		}
	}
}
