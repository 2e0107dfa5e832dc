package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/ingest/csvdata"
	"github.com/quantfarm/harvest/internal/pipeline"
)

var (
	fetchFrom string
	fetchTo   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [commodity...]",
	Short: "Download weather and price data into the data dir",
	Long: `Fetch daily temperatures from NASA POWER and daily closes from Yahoo
Finance, writing CSV caches that the run, sweep and abtest commands read.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date YYYY-MM-DD")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date YYYY-MM-DD")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	commodities, err := parseCommodities(args)
	if err != nil {
		return err
	}
	start, end, err := parseRange(fetchFrom, fetchTo)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	remote := pipeline.RemoteSources{}
	ctx := cmd.Context()

	for _, c := range commodities {
		ccfg, err := commodity.Lookup(c)
		if err != nil {
			return err
		}
		clog := log.With(zap.String("commodity", string(c)))

		records, err := remote.Temperature(ccfg).FetchDaily(ctx, ccfg.Region, start, end)
		if err != nil {
			return fmt.Errorf("%s: fetching weather: %w", c, err)
		}
		weatherPath := pipeline.WeatherPath(cfg.Data.Dir, ccfg)
		if err := csvdata.WriteTemperatures(weatherPath, records, ccfg.HasHumidity); err != nil {
			return fmt.Errorf("%s: writing %s: %w", c, weatherPath, err)
		}
		clog.Info("weather cached", zap.String("path", weatherPath), zap.Int("days", len(records)))

		bars, err := remote.Price(ccfg).FetchCloses(ctx, ccfg.Symbol, start, end)
		if err != nil {
			return fmt.Errorf("%s: fetching prices: %w", c, err)
		}
		pricePath := pipeline.PricePath(cfg.Data.Dir, ccfg)
		if err := csvdata.WritePrices(pricePath, bars); err != nil {
			return fmt.Errorf("%s: writing %s: %w", c, pricePath, err)
		}
		clog.Info("prices cached", zap.String("path", pricePath), zap.Int("bars", len(bars)))

		fmt.Printf("%-10s %6d weather days, %6d trading days\n", c, len(records), len(bars))
	}
	return nil
}
