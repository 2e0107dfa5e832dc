// Package ingest supplies the pipeline's two inputs: daily temperature
// records for a growing region and daily closing prices for a futures
// symbol. Implementations fetch from remote APIs or read local CSV caches;
// the core never does I/O itself.
package ingest

import (
	"context"
	"time"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/core"
)

// TemperatureSource produces cleaned daily weather records for a region,
// oldest first, with sentinel readings already dropped.
type TemperatureSource interface {
	Name() string
	FetchDaily(ctx context.Context, region commodity.Region, start, end time.Time) ([]core.TemperatureRecord, error)
}

// PriceSource produces daily closing prices for a futures symbol,
// oldest first, trading days only.
type PriceSource interface {
	Name() string
	FetchCloses(ctx context.Context, symbol string, start, end time.Time) ([]core.PriceBar, error)
}

// ThermalIndex derives the livestock heat-stress index from a day's max
// temperature and relative humidity. The constants follow the standard
// temperature-humidity index used in hog production studies.
func ThermalIndex(maxTempC, humidityPct float64) float64 {
	return 0.8*maxTempC + (humidityPct/100)*(maxTempC-14.4) + 46.4
}

// SentinelFloor is the cutoff at or below which a reading is a remote API
// error code (NASA POWER reports -999) rather than a temperature.
const SentinelFloor = -100
