package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfarm/harvest/internal/pipeline"
)

var (
	runFrom   string
	runTo     string
	runRemote bool
)

var runCmd = &cobra.Command{
	Use:   "run [commodity...]",
	Short: "Run the full signal pipeline",
	Long: `Run signal detection, backtest, holding-period sweep and significance
test for the named commodities (all of them when none are named).`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFrom, "from", "", "Start date YYYY-MM-DD")
	runCmd.Flags().StringVar(&runTo, "to", "", "End date YYYY-MM-DD")
	runCmd.Flags().BoolVar(&runRemote, "remote", false, "Fetch inputs from remote APIs instead of the data dir")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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
	start, end, err := parseRange(runFrom, runTo)
	if err != nil {
		return err
	}

	runner, _, err := buildRunner(cfg, log, runRemote)
	if err != nil {
		return err
	}

	var failed int
	for _, c := range commodities {
		report, err := runner.Run(cmd.Context(), c, start, end)
		if err != nil {
			failed++
			fmt.Printf("%-10s FAILED: %v\n", c, err)
			continue
		}
		printReport(report)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d commodities failed", failed, len(commodities))
	}
	return nil
}

func printReport(r *pipeline.Report) {
	fmt.Printf("=== %s (%s) run %s ===\n", r.Commodity, r.Symbol, r.RunID)
	fmt.Printf("Period:    %s to %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	fmt.Printf("Events:    %d extreme days, %d buy signals\n", len(r.Events), len(r.Signals))
	fmt.Printf("Backtest:  %.2f -> %.2f (%+.2f%%, %+.2f%% annualized, %d trades)\n",
		r.Backtest.InitialCash, r.Backtest.FinalCash,
		r.Backtest.TotalReturn*100, r.Backtest.AnnualizedReturn*100, len(r.Backtest.Trades))
	fmt.Printf("Sweep:     best hold %d months -> %.2f\n", r.Sweep.BestMonths, r.Sweep.BestCash)
	if r.Significance != nil {
		fmt.Printf("A/B test:  diff %+.4f, p = %.4f (%d signal vs %d other months)\n",
			r.Significance.ObservedDiff, r.Significance.PValue,
			r.Significance.SignalMonths, r.Significance.OtherMonths)
	} else {
		fmt.Println("A/B test:  skipped (no testable signal months)")
	}
	for _, a := range r.Alerts {
		fmt.Printf("Alert:     %s\n", a)
	}
	fmt.Println()
}
