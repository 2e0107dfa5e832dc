package backtest

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/quantfarm/harvest/internal/core"
)

func TestMeanDifference(t *testing.T) {
	// three signal months vs three quiet months
	values := []float64{0.05, 0.06, 0.07, 0.00, 0.01, -0.01}
	labels := []bool{true, true, true, false, false, false}

	got := meanDifference(values, labels)
	if math.Abs(got-0.06) > 1e-12 {
		t.Errorf("meanDifference = %v, want 0.06", got)
	}
}

func TestTester_FlatPricesGivePValueOne(t *testing.T) {
	// identical forward returns everywhere: the observed difference is 0
	// and every permutation matches it, so p = 1 exactly
	prices := dailySeries(t, day(2015, 1, 1), day(2017, 12, 31), 100)
	signals := []time.Time{day(2015, 3, 2), day(2016, 7, 1)}

	tester := NewTester(rand.New(rand.NewSource(1)), 500, nil)
	res, err := tester.Run(prices, signals, day(2015, 1, 1), 24, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ObservedDiff != 0 {
		t.Errorf("ObservedDiff = %v, want 0", res.ObservedDiff)
	}
	if res.PValue != 1 {
		t.Errorf("PValue = %v, want 1", res.PValue)
	}
}

func TestTester_Run(t *testing.T) {
	// rising then falling price path so month returns differ
	var order []string
	points := make(map[string]float64)
	price := 100.0
	for d := day(2015, 1, 1); d.Year() < 2018; d = d.AddDate(0, 0, 7) {
		if d.Year() < 2016 {
			price += 1.5
		} else {
			price -= 0.8
		}
		key := d.Format("2006-01-02")
		order = append(order, key)
		points[key] = price
	}
	prices := priceSeries(t, points, order)
	signals := []time.Time{day(2015, 2, 5), day(2015, 9, 3), day(2016, 6, 2)}

	tester := NewTester(rand.New(rand.NewSource(42)), 2000, nil)
	res, err := tester.Run(prices, signals, day(2015, 1, 1), 36, 6)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.PValue < 0 || res.PValue > 1 {
		t.Errorf("PValue = %v, want within [0,1]", res.PValue)
	}
	if len(res.Differences) != 2000 {
		t.Errorf("Differences = %d, want 2000", len(res.Differences))
	}
	if res.SignalMonths != 3 || res.OtherMonths != 33 {
		t.Errorf("group sizes = %d/%d, want 3/33", res.SignalMonths, res.OtherMonths)
	}

	// seeded runs reproduce exactly
	again, err := NewTester(rand.New(rand.NewSource(42)), 2000, nil).
		Run(prices, signals, day(2015, 1, 1), 36, 6)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if again.PValue != res.PValue || again.ObservedDiff != res.ObservedDiff {
		t.Errorf("seeded rerun diverged: %v vs %v", again.PValue, res.PValue)
	}
}

func TestTester_RequiresBothGroups(t *testing.T) {
	prices := dailySeries(t, day(2015, 1, 1), day(2016, 12, 31), 100)
	tester := NewTester(rand.New(rand.NewSource(7)), 100, nil)

	// no signal months at all
	_, err := tester.Run(prices, nil, day(2015, 1, 1), 12, 2)
	if !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition with no signal months, got %v", err)
	}

	// every month has a signal
	var everywhere []time.Time
	for i := 0; i < 12; i++ {
		everywhere = append(everywhere, day(2015, time.Month(i+1), 5))
	}
	_, err = tester.Run(prices, everywhere, day(2015, 1, 1), 12, 2)
	if !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition with all months labelled, got %v", err)
	}
}

func TestTester_EmptyPrices(t *testing.T) {
	tester := NewTester(rand.New(rand.NewSource(7)), 100, nil)
	if _, err := tester.Run(nil, nil, day(2015, 1, 1), 12, 2); !errors.Is(err, core.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestForwardReturn(t *testing.T) {
	prices := priceSeries(t,
		map[string]float64{"2020-01-02": 100, "2020-03-02": 110, "2020-04-01": 120},
		[]string{"2020-01-02", "2020-03-02", "2020-04-01"},
	)
	// month start Jan 1 resolves to Jan 2; two months forward lands on Mar 2
	got := forwardReturn(prices, day(2020, 1, 1), 2)
	if math.Abs(got-0.10) > 1e-12 {
		t.Errorf("forwardReturn = %v, want 0.10", got)
	}
}
