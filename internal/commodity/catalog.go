// Package commodity holds the per-commodity strategy parameters: futures
// symbol, growing region, extreme-weather detection rules, and backtest
// settings. One generic pipeline consumes these records instead of each
// commodity carrying its own copy of the logic.
package commodity

import (
	"time"

	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/signal"
)

// Region is the representative growing (or production) area whose weather
// drives the commodity's price.
type Region struct {
	Name string
	Lat  float64
	Lon  float64
}

// Config is everything the pipeline needs to run one commodity end to end.
type Config struct {
	Commodity core.Commodity
	Symbol    string // futures continuous-contract symbol
	Region    Region
	Rules     signal.Rules

	// HasHumidity marks regions whose weather source carries a humidity
	// channel, enabling the thermal-stress index.
	HasHumidity bool

	// RollDrag enables the seasonal futures roll adjustment (lean hogs).
	RollDrag bool

	InitialCash    float64
	HoldingMonths  int // default buy-and-hold length
	SweepMinMonths int
	SweepMaxMonths int

	// Significance-test settings.
	ABHoldingMonths int       // forward-return window for month labelling
	UniverseStart   time.Time // first month of the labelling universe
	UniverseMonths  int
	Permutations    int

	// CutoffYear excludes signals from the trailing partial year.
	CutoffYear int
}

// shared reference values across the catalog
const (
	defaultInitialCash  = 10000
	defaultSweepMin     = 1
	defaultSweepMax     = 12
	defaultPermutations = 5000
	defaultUniverseLen  = 120 // 2015-01 through 2024-12
	defaultCutoffYear   = 2025
)

var defaultUniverseStart = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

func base(c core.Commodity, symbol string, region Region, rules signal.Rules) Config {
	return Config{
		Commodity:       c,
		Symbol:          symbol,
		Region:          region,
		Rules:           rules,
		InitialCash:     defaultInitialCash,
		HoldingMonths:   6,
		SweepMinMonths:  defaultSweepMin,
		SweepMaxMonths:  defaultSweepMax,
		ABHoldingMonths: 7,
		UniverseStart:   defaultUniverseStart,
		UniverseMonths:  defaultUniverseLen,
		Permutations:    defaultPermutations,
		CutoffYear:      defaultCutoffYear,
	}
}

// Catalog returns the built-in configuration for every supported commodity.
func Catalog() map[core.Commodity]Config {
	coffee := base(core.CommodityCoffee, "KC=F",
		Region{Name: "Varginha, Minas Gerais", Lat: -21.55, Lon: -45.43},
		signal.Rules{
			// heat during cherry maturation, frost during the dry season
			Hot:  signal.Rule{Threshold: 33, Months: []time.Month{time.September, time.October}},
			Cold: signal.Rule{Threshold: 2, Months: []time.Month{time.June, time.July, time.August}},
		})

	corn := base(core.CommodityCorn, "ZC=F",
		Region{Name: "Central Iowa", Lat: 42.03, Lon: -93.64},
		signal.Rules{
			// pollination heat stress, late planting / early harvest frost
			Hot:  signal.Rule{Threshold: 35, Months: []time.Month{time.July, time.August}},
			Cold: signal.Rule{Threshold: 0, Months: []time.Month{time.May, time.September}},
		})

	cotton := base(core.CommodityCotton, "CT=F",
		Region{Name: "Lubbock, Texas High Plains", Lat: 33.58, Lon: -101.85},
		signal.Rules{
			// boll-fill heat, spring establishment cold
			Hot:  signal.Rule{Threshold: 38, Months: []time.Month{time.July, time.August}},
			Cold: signal.Rule{Threshold: 5, Months: []time.Month{time.April, time.May}},
		})

	soybeans := base(core.CommoditySoybeans, "ZS=F",
		Region{Name: "Des Moines, Iowa", Lat: 41.58, Lon: -93.62},
		signal.Rules{
			// pod-fill heat, frost at either end of the season
			Hot:  signal.Rule{Threshold: 35, Months: []time.Month{time.July, time.August}},
			Cold: signal.Rule{Threshold: 0, Months: []time.Month{time.May, time.September}},
		})

	wheat := base(core.CommodityWheat, "KE=F",
		Region{Name: "Central Kansas", Lat: 38.50, Lon: -98.20},
		signal.Rules{
			// grain-fill heat, jointing-stage freeze
			Hot:  signal.Rule{Threshold: 35, Months: []time.Month{time.May, time.June}},
			Cold: signal.Rule{Threshold: -3, Months: []time.Month{time.April, time.May}},
		})

	hogs := base(core.CommodityLeanHogs, "HE=F",
		Region{Name: "Northwest Iowa Hog Belt", Lat: 43.08, Lon: -96.17},
		signal.Rules{
			// the heat rule's month set sits outside the calendar and never
			// fires; kept as shipped until the intended summer window is
			// confirmed against herd-loss data
			Hot:  signal.Rule{Threshold: 38, Months: []time.Month{time.Month(13)}},
			Cold: signal.Rule{Threshold: -20, Months: []time.Month{time.December, time.January, time.February, time.March}},
		})
	hogs.HasHumidity = true
	hogs.RollDrag = true
	hogs.ABHoldingMonths = 6

	return map[core.Commodity]Config{
		core.CommodityCoffee:   coffee,
		core.CommodityCorn:     corn,
		core.CommodityCotton:   cotton,
		core.CommoditySoybeans: soybeans,
		core.CommodityWheat:    wheat,
		core.CommodityLeanHogs: hogs,
	}
}

// Lookup fetches one commodity's config from the catalog.
func Lookup(c core.Commodity) (Config, error) {
	cfg, ok := Catalog()[c]
	if !ok {
		return Config{}, core.ErrUnknownName
	}
	return cfg, nil
}
