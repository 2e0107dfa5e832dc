package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "HARVEST - weather-driven commodity trading signals",
	Long: `HARVEST detects extreme-weather events in commodity growing regions,
turns them into futures buy signals, and backtests the resulting strategy
with holding-period sweeps and permutation significance tests.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
