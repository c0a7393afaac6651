package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backsim",
	Short: "An event-driven trade simulation and backtesting engine",
	Long: `Backsim replays historical bar data through trading strategies and
simulates order execution with slippage and commission.

It provides tools for:
  - Backtesting strategies against historical OHLC bars
  - Exact cash/position accounting across position flips
  - Equity curve, drawdown and trade journaling (CSV or SQLite)
  - Risk/return statistics (Sharpe, Sortino, Calmar, profit factor)

Complete documentation is available at https://github.com/rustyeddy/backsim`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
