package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quantfarm/harvest/internal/alert"
	"github.com/quantfarm/harvest/internal/config"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/logger"
	"github.com/quantfarm/harvest/internal/metrics"
	"github.com/quantfarm/harvest/internal/notifier"
	"github.com/quantfarm/harvest/internal/notifier/webhook"
	"github.com/quantfarm/harvest/internal/pipeline"
	"github.com/quantfarm/harvest/internal/storage/archive"
)

// loadConfig loads and validates the config file, falling back to defaults
// when no file is given.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	return logger.Must(level, cfg.Logging.Development || debug)
}

// buildRunner assembles the pipeline with every configured integration.
func buildRunner(cfg *config.Config, log *zap.Logger, remote bool) (*pipeline.Runner, *metrics.Registry, error) {
	var sources pipeline.SourceProvider
	if remote {
		sources = pipeline.RemoteSources{}
	} else {
		sources = pipeline.DataDirSources{Dir: cfg.Data.Dir}
	}

	runner := pipeline.New(cfg, sources, log)

	store, err := archive.New(cfg.Storage.Cold)
	if err != nil {
		return nil, nil, fmt.Errorf("building archive: %w", err)
	}
	runner.SetArchive(store)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		runner.SetMetrics(reg)
	}

	if cfg.Alerts.Enabled {
		runner.SetAlerts(alert.NewEvaluator(alert.FromConfig(cfg.Alerts.Rules), log))
	}

	notifiers := notifier.NewRegistry()
	for name, ncfg := range cfg.Notifiers {
		if !ncfg.Enabled {
			continue
		}
		switch name {
		case "webhook":
			hook, err := webhook.New(ncfg.URL, ncfg.Headers)
			if err != nil {
				return nil, nil, fmt.Errorf("building webhook notifier: %w", err)
			}
			if err := notifiers.Register(hook); err != nil {
				return nil, nil, err
			}
		default:
			log.Warn("unknown notifier in config", zap.String("name", name))
		}
	}
	if len(notifiers.All()) > 0 {
		runner.SetNotifiers(notifiers)
	}

	return runner, reg, nil
}

// parseCommodities maps positional args to catalog commodities; no args
// means all of them.
func parseCommodities(args []string) ([]core.Commodity, error) {
	if len(args) == 0 {
		return core.All(), nil
	}
	known := make(map[core.Commodity]bool, len(core.All()))
	for _, c := range core.All() {
		known[c] = true
	}
	out := make([]core.Commodity, 0, len(args))
	for _, a := range args {
		c := core.Commodity(a)
		if !known[c] {
			return nil, fmt.Errorf("unknown commodity %q", a)
		}
		out = append(out, c)
	}
	return out, nil
}

// parseRange parses --from/--to with sensible defaults: a decade of history
// ending today.
func parseRange(from, to string) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(-10, 0, 0)

	var err error
	if from != "" {
		start, err = time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
		}
	}
	if to != "" {
		end, err = time.Parse("2006-01-02", to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return start, end, nil
}
