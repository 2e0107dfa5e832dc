package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	sweepFrom   string
	sweepTo     string
	sweepRemote bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <commodity>",
	Short: "Show final cash for every holding period",
	Long:  "Run the backtest once per holding period and print the full profit table.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepFrom, "from", "", "Start date YYYY-MM-DD")
	sweepCmd.Flags().StringVar(&sweepTo, "to", "", "End date YYYY-MM-DD")
	sweepCmd.Flags().BoolVar(&sweepRemote, "remote", false, "Fetch inputs from remote APIs instead of the data dir")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
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
	start, end, err := parseRange(sweepFrom, sweepTo)
	if err != nil {
		return err
	}

	runner, _, err := buildRunner(cfg, log, sweepRemote)
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context(), commodities[0], start, end)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s holding-period sweep ===\n", report.Commodity)
	fmt.Printf("%-8s %12s %10s\n", "Months", "Final cash", "Profit")

	months := make([]int, 0, len(report.Sweep.FinalCash))
	for m := range report.Sweep.FinalCash {
		months = append(months, m)
	}
	sort.Ints(months)

	for _, m := range months {
		marker := ""
		if m == report.Sweep.BestMonths {
			marker = "  <- best"
		}
		fmt.Printf("%-8d %12.2f %+9.2f%%%s\n",
			m, report.Sweep.FinalCash[m], report.Sweep.Profit[m]*100, marker)
	}
	return nil
}
