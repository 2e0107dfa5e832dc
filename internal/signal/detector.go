// Package signal converts daily temperature series into monthly trade-entry
// signals using commodity-specific extreme-weather rules.
package signal

import (
	"sort"
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/series"
	"go.uber.org/zap"
)

// Rule is one detection threshold bound to a set of critical months.
// A reading only counts as extreme when its month is in the set.
type Rule struct {
	Threshold float64
	Months    []time.Month
}

// Active reports whether m is one of the rule's critical months.
func (r Rule) Active(m time.Month) bool {
	for _, cm := range r.Months {
		if cm == m {
			return true
		}
	}
	return false
}

// Rules bundles a commodity's detection thresholds. Hot compares against
// the daily max temperature, Cold against the daily min. ThermalIndex is
// the heat-stress variant for livestock and is disabled when nil.
type Rules struct {
	Hot          Rule
	Cold         Rule
	ThermalIndex *Rule
}

// Detector scans temperature series for extreme events and reduces them
// to at most one buy signal per calendar month.
type Detector struct {
	rules      Rules
	cutoffYear int
	logger     *zap.Logger
}

// New creates a Detector. cutoffYear marks the trailing partial year whose
// signals are excluded as unconfirmed.
func New(rules Rules, cutoffYear int, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{rules: rules, cutoffYear: cutoffYear, logger: logger}
}

// Events returns every extreme-temperature day in the series, in
// chronological order. Hot and cold breaches on the same day yield two
// events. An empty series yields no events.
func (d *Detector) Events(temps *series.TemperatureSeries) []core.ExtremeEvent {
	var events []core.ExtremeEvent
	for i := 0; i < temps.Len(); i++ {
		rec := temps.At(i)
		month := rec.Date.Month()

		if rec.MaxTempC > d.rules.Hot.Threshold && d.rules.Hot.Active(month) {
			events = append(events, core.ExtremeEvent{
				Date: rec.Date, Kind: core.EventHot, Value: rec.MaxTempC,
			})
		}
		if ti := d.rules.ThermalIndex; ti != nil &&
			rec.ThermalIndex > ti.Threshold && ti.Active(month) {
			events = append(events, core.ExtremeEvent{
				Date: rec.Date, Kind: core.EventHot, Value: rec.ThermalIndex,
			})
		}
		if rec.MinTempC < d.rules.Cold.Threshold && d.rules.Cold.Active(month) {
			events = append(events, core.ExtremeEvent{
				Date: rec.Date, Kind: core.EventCold, Value: rec.MinTempC,
			})
		}
	}
	return events
}

// Signals reduces extreme events to buy-signal dates: the union of event
// dates in chronological order, keeping only the first date of each
// (year, month), dropping dates absent from the price index and dates in
// the cutoff year. An empty event set yields an empty signal set.
func (d *Detector) Signals(events []core.ExtremeEvent, prices *series.PriceSeries) []time.Time {
	// union of event dates: two events on one day collapse to one candidate
	dateSet := make(map[time.Time]struct{}, len(events))
	for _, ev := range events {
		dateSet[ev.Date] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for dt := range dateSet {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var signals []time.Time
	seen := make(map[series.MonthKey]struct{})
	for _, dt := range dates {
		if !prices.Contains(dt) || dt.Year() == d.cutoffYear {
			continue
		}
		key := series.MonthOf(dt)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		signals = append(signals, dt)
	}

	d.logger.Debug("signal detection complete",
		zap.Int("events", len(events)),
		zap.Int("signals", len(signals)),
	)
	return signals
}

// Detect runs the full scan: events plus monthly deduplicated signals.
func (d *Detector) Detect(temps *series.TemperatureSeries, prices *series.PriceSeries) ([]core.ExtremeEvent, []time.Time) {
	events := d.Events(temps)
	return events, d.Signals(events, prices)
}
