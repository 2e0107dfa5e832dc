package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/ingest"
	"github.com/quantfarm/harvest/internal/ingest/csvdata"
	"github.com/quantfarm/harvest/internal/ingest/power"
	"github.com/quantfarm/harvest/internal/ingest/yahoo"
)

// WeatherPath returns the CSV cache location for a commodity's weather data.
func WeatherPath(dir string, cfg commodity.Config) string {
	return filepath.Join(dir, fmt.Sprintf("%s_weather.csv", cfg.Commodity))
}

// PricePath returns the CSV cache location for a commodity's price data.
func PricePath(dir string, cfg commodity.Config) string {
	return filepath.Join(dir, fmt.Sprintf("%s_prices.csv", cfg.Commodity))
}

// DataDirSources serves pipeline inputs from a directory of CSV caches
// previously written by the fetch command.
type DataDirSources struct {
	Dir string
}

func (s DataDirSources) Temperature(cfg commodity.Config) ingest.TemperatureSource {
	return &csvdata.TemperatureFile{Path: WeatherPath(s.Dir, cfg)}
}

func (s DataDirSources) Price(cfg commodity.Config) ingest.PriceSource {
	return &csvdata.PriceFile{Path: PricePath(s.Dir, cfg)}
}

// RemoteSources serves pipeline inputs straight from the NASA POWER and
// Yahoo Finance APIs.
type RemoteSources struct{}

func (RemoteSources) Temperature(cfg commodity.Config) ingest.TemperatureSource {
	if cfg.HasHumidity {
		return power.New(power.WithHumidity())
	}
	return power.New()
}

func (RemoteSources) Price(cfg commodity.Config) ingest.PriceSource {
	return yahoo.New()
}
