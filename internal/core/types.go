package core

import "time"

// Commodity identifies a tradable agricultural commodity
type Commodity string

const (
	CommodityCoffee   Commodity = "coffee"
	CommodityCorn     Commodity = "corn"
	CommodityCotton   Commodity = "cotton"
	CommoditySoybeans Commodity = "soybeans"
	CommodityWheat    Commodity = "wheat"
	CommodityLeanHogs Commodity = "lean_hogs"
)

// All lists every supported commodity in catalog order
func All() []Commodity {
	return []Commodity{
		CommodityCoffee,
		CommodityCorn,
		CommodityCotton,
		CommoditySoybeans,
		CommodityWheat,
		CommodityLeanHogs,
	}
}

// TemperatureRecord is one day of cleaned weather data for a growing region.
// Sentinel readings (at or below -100°C) are filtered out upstream.
type TemperatureRecord struct {
	Date         time.Time
	MaxTempC     float64
	MinTempC     float64
	HumidityPct  float64 // 0 when the source has no humidity channel
	ThermalIndex float64 // derived heat-stress index, 0 when not computed
}

// IsValid checks that the record carries physically plausible readings
func (r TemperatureRecord) IsValid() bool {
	return r.MaxTempC > -100 && r.MinTempC > -100 && !r.Date.IsZero()
}

// PriceBar is one trading day's closing price for a futures contract.
// Non-trading days are simply absent, never zero-filled.
type PriceBar struct {
	Date  time.Time
	Close float64
}

// IsValid checks the bar has a positive close and a real date
func (b PriceBar) IsValid() bool {
	return b.Close > 0 && !b.Date.IsZero()
}

// EventKind classifies an extreme-temperature event
type EventKind string

const (
	EventHot  EventKind = "hot"
	EventCold EventKind = "cold"
)

// ExtremeEvent is a single day whose reading breached a commodity's
// threshold inside one of its critical months
type ExtremeEvent struct {
	Date  time.Time
	Kind  EventKind
	Value float64 // the reading that triggered the event
}

// BuySignal is a trade-entry date, deduplicated to at most one per
// calendar month and guaranteed present in the price index
type BuySignal struct {
	Date      time.Time
	Commodity Commodity
}
