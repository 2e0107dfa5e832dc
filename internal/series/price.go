package series

import (
	"fmt"
	"sort"
	"time"

	"github.com/quantfarm/harvest/internal/core"
)

// PriceSeries is an immutable date-indexed sequence of daily closes.
// Dates are strictly increasing; non-trading days are absent.
type PriceSeries struct {
	dates  []time.Time
	closes []float64
}

// NewPriceSeries validates and wraps a slice of bars. Bars must already be
// sorted by date; duplicates, out-of-order dates, and non-positive closes
// are rejected.
func NewPriceSeries(bars []core.PriceBar) (*PriceSeries, error) {
	if len(bars) == 0 {
		return nil, core.ErrNoData
	}

	s := &PriceSeries{
		dates:  make([]time.Time, len(bars)),
		closes: make([]float64, len(bars)),
	}
	for i, b := range bars {
		if !b.IsValid() {
			return nil, core.WrapError(core.ErrBadSeries,
				fmt.Errorf("bar %d: close must be positive, got %v", i, b.Close))
		}
		d := Day(b.Date)
		if i > 0 && !s.dates[i-1].Before(d) {
			return nil, core.WrapError(core.ErrBadSeries,
				fmt.Errorf("bar %d: date %s not after %s", i,
					d.Format("2006-01-02"), s.dates[i-1].Format("2006-01-02")))
		}
		s.dates[i] = d
		s.closes[i] = b.Close
	}
	return s, nil
}

// Len returns the number of trading days in the series.
func (s *PriceSeries) Len() int { return len(s.dates) }

// Date returns the i-th trading day.
func (s *PriceSeries) Date(i int) time.Time { return s.dates[i] }

// Close returns the i-th closing price.
func (s *PriceSeries) Close(i int) float64 { return s.closes[i] }

// First returns the earliest trading day.
func (s *PriceSeries) First() time.Time { return s.dates[0] }

// Last returns the latest trading day.
func (s *PriceSeries) Last() time.Time { return s.dates[len(s.dates)-1] }

// Index locates an exact trading day.
func (s *PriceSeries) Index(date time.Time) (int, bool) {
	d := Day(date)
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(d) })
	if i < len(s.dates) && s.dates[i].Equal(d) {
		return i, true
	}
	return 0, false
}

// Contains reports whether date is a trading day in the series.
func (s *PriceSeries) Contains(date time.Time) bool {
	_, ok := s.Index(date)
	return ok
}

// CloseOn returns the close for an exact trading day.
func (s *PriceSeries) CloseOn(date time.Time) (float64, bool) {
	i, ok := s.Index(date)
	if !ok {
		return 0, false
	}
	return s.closes[i], true
}

// Nearest returns the index of the trading day closest to target.
// When two trading days are exactly equidistant, the earlier one wins.
func (s *PriceSeries) Nearest(target time.Time) int {
	d := Day(target)
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(d) })
	if i == 0 {
		return 0
	}
	if i == len(s.dates) {
		return len(s.dates) - 1
	}
	before := d.Sub(s.dates[i-1])
	after := s.dates[i].Sub(d)
	if before <= after {
		return i - 1
	}
	return i
}

// SpanDays is the number of calendar days between the first and last bar.
func (s *PriceSeries) SpanDays() int {
	return int(s.Last().Sub(s.First()).Hours() / 24)
}

// Dates returns a copy of the full trading-day index.
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}
