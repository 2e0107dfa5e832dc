package signal

import (
	"testing"
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/series"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// coffeeRules mirrors the arabica-belt defaults: hot >33°C in Sep-Oct,
// cold <2°C in Jun-Aug.
func coffeeRules() Rules {
	return Rules{
		Hot:  Rule{Threshold: 33, Months: []time.Month{time.September, time.October}},
		Cold: Rule{Threshold: 2, Months: []time.Month{time.June, time.July, time.August}},
	}
}

func tempSeries(t *testing.T, recs []core.TemperatureRecord) *series.TemperatureSeries {
	t.Helper()
	s, err := series.NewTemperatureSeries(recs)
	if err != nil {
		t.Fatalf("NewTemperatureSeries: %v", err)
	}
	return s
}

// priceIndexAround builds a daily price series covering the given year range.
func priceIndexAround(t *testing.T, startYear, endYear int) *series.PriceSeries {
	t.Helper()
	var bars []core.PriceBar
	for d := day(startYear, 1, 1); d.Year() <= endYear; d = d.AddDate(0, 0, 1) {
		bars = append(bars, core.PriceBar{Date: d, Close: 100})
	}
	s, err := series.NewPriceSeries(bars)
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}
	return s
}

func TestDetector_SingleHotDay(t *testing.T) {
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2020, 9, 14), MaxTempC: 34, MinTempC: 18},
	})
	prices := priceIndexAround(t, 2019, 2021)

	det := New(coffeeRules(), 2025, nil)
	events, signals := det.Detect(temps, prices)

	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Kind != core.EventHot || events[0].Value != 34 {
		t.Errorf("unexpected event %+v", events[0])
	}
	if len(signals) != 1 || !signals[0].Equal(day(2020, 9, 14)) {
		t.Errorf("signals = %v, want [2020-09-14]", signals)
	}
}

func TestDetector_HotOutsideCriticalMonths(t *testing.T) {
	// 34°C in November is hot but not in the critical window
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2020, 11, 3), MaxTempC: 34, MinTempC: 18},
	})
	det := New(coffeeRules(), 2025, nil)
	if events := det.Events(temps); len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
}

func TestDetector_OneSignalPerMonth(t *testing.T) {
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2020, 9, 14), MaxTempC: 34, MinTempC: 18},
		{Date: day(2020, 9, 21), MaxTempC: 35, MinTempC: 19},
		{Date: day(2020, 10, 2), MaxTempC: 36, MinTempC: 20},
	})
	prices := priceIndexAround(t, 2019, 2021)

	det := New(coffeeRules(), 2025, nil)
	_, signals := det.Detect(temps, prices)

	if len(signals) != 2 {
		t.Fatalf("signals = %v, want one per month", signals)
	}
	// the earlier September date wins
	if !signals[0].Equal(day(2020, 9, 14)) {
		t.Errorf("signals[0] = %s, want 2020-09-14", signals[0].Format("2006-01-02"))
	}
	if !signals[1].Equal(day(2020, 10, 2)) {
		t.Errorf("signals[1] = %s, want 2020-10-02", signals[1].Format("2006-01-02"))
	}
}

func TestDetector_NeverTwoSignalsInOneMonth(t *testing.T) {
	// dense series with many qualifying days across several months
	var recs []core.TemperatureRecord
	for d := day(2019, 6, 1); d.Year() < 2022; d = d.AddDate(0, 0, 3) {
		recs = append(recs, core.TemperatureRecord{Date: d, MaxTempC: 36, MinTempC: -1})
	}
	temps := tempSeries(t, recs)
	prices := priceIndexAround(t, 2019, 2022)

	det := New(coffeeRules(), 2025, nil)
	_, signals := det.Detect(temps, prices)

	seen := make(map[series.MonthKey]bool)
	for _, s := range signals {
		key := series.MonthOf(s)
		if seen[key] {
			t.Fatalf("two signals in %v", key)
		}
		seen[key] = true
	}
	if len(signals) == 0 {
		t.Fatal("expected signals from dense extreme series")
	}
}

func TestDetector_SameDayHotAndCold(t *testing.T) {
	// a single day breaching both thresholds produces two events but only
	// one candidate date
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2020, 9, 14), MaxTempC: 34, MinTempC: 18},
	})
	rules := coffeeRules()
	rules.Cold = Rule{Threshold: 20, Months: []time.Month{time.September}}
	prices := priceIndexAround(t, 2019, 2021)

	det := New(rules, 2025, nil)
	events, signals := det.Detect(temps, prices)
	if len(events) != 2 {
		t.Errorf("events = %d, want 2", len(events))
	}
	if len(signals) != 1 {
		t.Errorf("signals = %d, want 1", len(signals))
	}
}

func TestDetector_SkipsNonTradingDays(t *testing.T) {
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2020, 9, 12), MaxTempC: 34, MinTempC: 18}, // not in price index
	})
	// price index without Sep 12
	var bars []core.PriceBar
	for d := day(2020, 9, 1); d.Day() <= 30 && d.Month() == time.September; d = d.AddDate(0, 0, 1) {
		if d.Day() == 12 {
			continue
		}
		bars = append(bars, core.PriceBar{Date: d, Close: 100})
	}
	prices, err := series.NewPriceSeries(bars)
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}

	det := New(coffeeRules(), 2025, nil)
	_, signals := det.Detect(temps, prices)
	if len(signals) != 0 {
		t.Errorf("signals = %v, want none for a market holiday", signals)
	}
}

func TestDetector_ExcludesCutoffYear(t *testing.T) {
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2025, 9, 15), MaxTempC: 36, MinTempC: 18},
	})
	prices := priceIndexAround(t, 2024, 2025)

	det := New(coffeeRules(), 2025, nil)
	_, signals := det.Detect(temps, prices)
	if len(signals) != 0 {
		t.Errorf("signals = %v, want none in the cutoff year", signals)
	}
}

func TestDetector_EmptySeries(t *testing.T) {
	temps := tempSeries(t, nil)
	prices := priceIndexAround(t, 2020, 2020)

	det := New(coffeeRules(), 2025, nil)
	events, signals := det.Detect(temps, prices)
	if len(events) != 0 || len(signals) != 0 {
		t.Errorf("empty input should produce empty output, got %d events %d signals",
			len(events), len(signals))
	}
}

func TestDetector_ThermalIndexVariant(t *testing.T) {
	thi := &Rule{Threshold: 78, Months: []time.Month{time.July}}
	rules := Rules{
		Hot:          Rule{Threshold: 38, Months: nil}, // effectively disabled
		Cold:         Rule{Threshold: -20, Months: []time.Month{time.December}},
		ThermalIndex: thi,
	}
	temps := tempSeries(t, []core.TemperatureRecord{
		{Date: day(2020, 7, 8), MaxTempC: 33, MinTempC: 22, HumidityPct: 80, ThermalIndex: 84.2},
		{Date: day(2020, 7, 9), MaxTempC: 28, MinTempC: 20, HumidityPct: 60, ThermalIndex: 71.0},
	})
	det := New(rules, 2025, nil)
	events := det.Events(temps)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Value != 84.2 {
		t.Errorf("event value = %v, want the thermal index reading", events[0].Value)
	}
}

func TestRule_NeverMatchingMonthSet(t *testing.T) {
	// a rule bound to a month outside 1-12 matches nothing; the hog-belt
	// heat rule ships configured this way
	r := Rule{Threshold: 38, Months: []time.Month{time.Month(13)}}
	for m := time.January; m <= time.December; m++ {
		if r.Active(m) {
			t.Errorf("month %v should not activate", m)
		}
	}
}
