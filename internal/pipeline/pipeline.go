// Package pipeline orchestrates the full run for one commodity: ingest,
// signal detection, backtest, holding-period sweep, significance test,
// then archival, alerting and notification.
package pipeline

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantfarm/harvest/internal/alert"
	"github.com/quantfarm/harvest/internal/backtest"
	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/config"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/ingest"
	"github.com/quantfarm/harvest/internal/metrics"
	"github.com/quantfarm/harvest/internal/notifier"
	"github.com/quantfarm/harvest/internal/series"
	"github.com/quantfarm/harvest/internal/signal"
	"github.com/quantfarm/harvest/internal/storage/archive"
)

// Report is the complete outcome of one commodity's pipeline run.
type Report struct {
	RunID       string         `json:"run_id"`
	Commodity   core.Commodity `json:"commodity"`
	Symbol      string         `json:"symbol"`
	GeneratedAt time.Time      `json:"generated_at"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`

	Events  []core.ExtremeEvent `json:"events"`
	Signals []time.Time         `json:"signals"`

	Backtest     *backtest.Result             `json:"backtest"`
	Sweep        *backtest.SweepResult        `json:"sweep"`
	Significance *backtest.SignificanceResult `json:"significance,omitempty"`

	Alerts []string `json:"alerts,omitempty"`
}

// SourceProvider hands the runner its inputs for one commodity. Providers
// decide whether data comes from remote APIs or the local CSV cache.
type SourceProvider interface {
	Temperature(cfg commodity.Config) ingest.TemperatureSource
	Price(cfg commodity.Config) ingest.PriceSource
}

// Runner executes pipelines for configured commodities.
type Runner struct {
	cfg     *config.Config
	sources SourceProvider
	logger  *zap.Logger

	store     archive.Store
	notifiers *notifier.Registry
	evaluator *alert.Evaluator
	metrics   *metrics.Registry

	now func() time.Time
}

// New creates a Runner. Archive, notifiers, alerts and metrics are off
// until wired with the setters.
func New(cfg *config.Config, sources SourceProvider, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		sources: sources,
		logger:  logger,
		now:     time.Now,
	}
}

// SetArchive wires cold storage for finished reports.
func (r *Runner) SetArchive(store archive.Store) {
	r.store = store
}

// SetNotifiers wires run summary delivery.
func (r *Runner) SetNotifiers(reg *notifier.Registry) {
	r.notifiers = reg
}

// SetAlerts wires post-run rule evaluation.
func (r *Runner) SetAlerts(e *alert.Evaluator) {
	r.evaluator = e
}

// SetMetrics wires Prometheus instrumentation.
func (r *Runner) SetMetrics(reg *metrics.Registry) {
	r.metrics = reg
}

// commodityConfig resolves the catalog entry plus any configured overrides
// and the shared pipeline parameters.
func (r *Runner) commodityConfig(c core.Commodity) (commodity.Config, error) {
	ccfg, err := commodity.Lookup(c)
	if err != nil {
		return commodity.Config{}, err
	}

	p := r.cfg.Pipeline
	ccfg.InitialCash = p.InitialCash
	ccfg.SweepMinMonths = p.MinHoldingMonths
	ccfg.SweepMaxMonths = p.MaxHoldingMonths
	ccfg.Permutations = p.Permutations
	ccfg.CutoffYear = p.CutoffYear

	if o, ok := r.cfg.Commodities[string(c)]; ok {
		o.Apply(&ccfg)
	}
	return ccfg, nil
}

// Run executes the full pipeline for one commodity over [start, end].
func (r *Runner) Run(ctx context.Context, c core.Commodity, start, end time.Time) (*Report, error) {
	began := r.now()

	report, err := r.run(ctx, c, start, end)

	if r.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordPipelineRun(string(c), status, r.now().Sub(began).Seconds())
	}
	return report, err
}

func (r *Runner) run(ctx context.Context, c core.Commodity, start, end time.Time) (*Report, error) {
	ccfg, err := r.commodityConfig(c)
	if err != nil {
		return nil, err
	}

	log := r.logger.With(zap.String("commodity", string(c)), zap.String("symbol", ccfg.Symbol))

	tempSrc := r.sources.Temperature(ccfg)
	records, err := tempSrc.FetchDaily(ctx, ccfg.Region, start, end)
	if err != nil {
		return nil, err
	}
	temps, err := series.NewTemperatureSeries(records)
	if err != nil {
		return nil, err
	}

	priceSrc := r.sources.Price(ccfg)
	bars, err := priceSrc.FetchCloses(ctx, ccfg.Symbol, start, end)
	if err != nil {
		return nil, err
	}
	prices, err := series.NewPriceSeries(bars)
	if err != nil {
		return nil, err
	}

	log.Info("inputs loaded",
		zap.String("temperature_source", tempSrc.Name()),
		zap.String("price_source", priceSrc.Name()),
		zap.Int("temperature_days", temps.Len()),
		zap.Int("trading_days", prices.Len()),
	)

	detector := signal.New(ccfg.Rules, ccfg.CutoffYear, log)
	events, signals := detector.Detect(temps, prices)
	r.recordSignalMetrics(c, events)

	var drag *backtest.DragSchedule
	if ccfg.RollDrag {
		drag = backtest.NewHogRollSchedule()
	}
	engine := backtest.NewEngine(ccfg.InitialCash, drag, log)

	btStart := r.now()
	result, err := engine.Run(prices, signals, ccfg.HoldingMonths)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordBacktest(string(c), r.now().Sub(btStart).Seconds())
	}

	sweep, err := engine.Sweep(prices, signals, ccfg.SweepMinMonths, ccfg.SweepMaxMonths)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       uuid.NewString(),
		Commodity:   c,
		Symbol:      ccfg.Symbol,
		GeneratedAt: r.now().UTC(),
		Start:       start,
		End:         end,
		Events:      events,
		Signals:     signals,
		Backtest:    result,
		Sweep:       sweep,
	}

	// A commodity whose signals all fall outside the universe cannot be
	// tested for significance; the rest of the report still stands.
	rng := rand.New(rand.NewSource(r.cfg.Pipeline.Seed))
	tester := backtest.NewTester(rng, ccfg.Permutations, log)
	sigStart := r.now()
	sig, err := tester.Run(prices, signals, ccfg.UniverseStart, ccfg.UniverseMonths, ccfg.ABHoldingMonths)
	if err != nil {
		log.Warn("significance test skipped", zap.Error(err))
	} else {
		report.Significance = sig
		if r.metrics != nil {
			r.metrics.RecordSignificance(r.now().Sub(sigStart).Seconds())
		}
	}

	r.finish(ctx, report, log)

	log.Info("pipeline run complete",
		zap.String("run_id", report.RunID),
		zap.Int("signals", len(signals)),
		zap.Float64("final_cash", result.FinalCash),
		zap.Int("best_holding_months", sweep.BestMonths),
	)
	return report, nil
}

// finish handles the post-run fanout: alerts, metrics, archive, notify.
// Failures here are logged but never fail the run itself.
func (r *Runner) finish(ctx context.Context, report *Report, log *zap.Logger) {
	m := reportMetrics(report)

	if r.evaluator != nil {
		for _, a := range r.evaluator.Evaluate(string(report.Commodity), m) {
			report.Alerts = append(report.Alerts, a.Message)
		}
	}

	if r.metrics != nil {
		pValue := 1.0
		if report.Significance != nil {
			pValue = report.Significance.PValue
		}
		r.metrics.SetLastResults(string(report.Commodity), pValue, report.Backtest.FinalCash)
	}

	if r.store != nil {
		key := archive.ReportKey(string(report.Commodity), report.GeneratedAt, report.RunID)
		data, err := json.MarshalIndent(report, "", "  ")
		if err == nil {
			err = r.store.Put(ctx, key, data)
		}
		status := "ok"
		if err != nil {
			status = "error"
			log.Error("report archive failed", zap.String("key", key), zap.Error(err))
		}
		if r.metrics != nil {
			r.metrics.RecordArchive(r.store.Name(), status)
		}
	}

	if r.notifiers != nil {
		summary := notifier.Summary{
			RunID:             report.RunID,
			Commodity:         string(report.Commodity),
			Symbol:            report.Symbol,
			SignalCount:       len(report.Signals),
			FinalCash:         report.Backtest.FinalCash,
			TotalReturn:       report.Backtest.TotalReturn,
			BestHoldingMonths: report.Sweep.BestMonths,
			Alerts:            report.Alerts,
			GeneratedAt:       report.GeneratedAt,
		}
		if report.Significance != nil {
			summary.PValue = report.Significance.PValue
		}
		for name, err := range r.notifiers.SendAll(ctx, summary) {
			log.Error("notification failed", zap.String("notifier", name), zap.Error(err))
			if r.metrics != nil {
				r.metrics.RecordNotification(name, "error")
			}
		}
	}
}

func (r *Runner) recordSignalMetrics(c core.Commodity, events []core.ExtremeEvent) {
	if r.metrics == nil {
		return
	}
	counts := map[core.EventKind]int{}
	for _, ev := range events {
		counts[ev.Kind]++
	}
	for kind, n := range counts {
		r.metrics.RecordSignals(string(c), string(kind), n)
	}
}

// reportMetrics flattens a report's headline numbers for alert rules.
func reportMetrics(report *Report) map[string]float64 {
	m := map[string]float64{
		"signal_count":      float64(len(report.Signals)),
		"event_count":       float64(len(report.Events)),
		"final_cash":        report.Backtest.FinalCash,
		"total_return":      report.Backtest.TotalReturn,
		"annualized_return": report.Backtest.AnnualizedReturn,
	}
	if report.Sweep != nil {
		m["best_holding_months"] = float64(report.Sweep.BestMonths)
		m["best_final_cash"] = report.Sweep.BestCash
	}
	if report.Significance != nil {
		m["p_value"] = report.Significance.PValue
		m["observed_diff"] = report.Significance.ObservedDiff
	}
	return m
}

// RunAll executes the pipeline for every cataloged commodity. One
// commodity's failure never blocks the others; failures come back in errs
// keyed by commodity.
func (r *Runner) RunAll(ctx context.Context, start, end time.Time) (reports []*Report, errs map[core.Commodity]error) {
	errs = make(map[core.Commodity]error)
	for _, c := range core.All() {
		if ctx.Err() != nil {
			errs[c] = ctx.Err()
			continue
		}
		if o, ok := r.cfg.Commodities[string(c)]; ok && o.Enabled != nil && !*o.Enabled {
			r.logger.Debug("commodity disabled, skipping", zap.String("commodity", string(c)))
			continue
		}
		report, err := r.Run(ctx, c, start, end)
		if err != nil {
			r.logger.Error("pipeline run failed",
				zap.String("commodity", string(c)), zap.Error(err))
			errs[c] = err
			continue
		}
		reports = append(reports, report)
	}
	return reports, errs
}
