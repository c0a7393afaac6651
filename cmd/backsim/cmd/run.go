package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/backsim/backtest"
	"github.com/rustyeddy/backsim/config"
	"github.com/rustyeddy/backsim/internal/report"
	"github.com/rustyeddy/backsim/journal"
	"github.com/rustyeddy/backsim/market"
	"github.com/rustyeddy/backsim/portfolio"
	"github.com/rustyeddy/backsim/risk"
	"github.com/rustyeddy/backsim/sim"
	"github.com/rustyeddy/backsim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a configuration file",
	Long: `Run loads a configuration file, replays the configured bar data through
the strategy and prints a performance report.

Example:
  backsim run --config simulation.yaml`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (required)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "enable debug logging")
	runCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if runVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()
	}

	bars, err := market.LoadCSV(cfg.Data.File)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	feed, err := market.NewMemoryFeed(bars)
	if err != nil {
		return err
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.FastPeriod, cfg.Strategy.SlowPeriod)
	if err != nil {
		return err
	}

	var sizer backtest.Sizer
	switch cfg.Sizer.Type {
	case "fixed":
		sizer = risk.FixedSizer{Units: cfg.Sizer.Units}
	case "equity-pct":
		sizer = risk.EquityPctSizer{Pct: cfg.Sizer.Pct}
	}

	jrnl, err := newJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer jrnl.Close()

	simulator, err := sim.New(cfg.Simulation.CommissionPct, cfg.Simulation.SlippagePct, log)
	if err != nil {
		return err
	}
	ledger, err := portfolio.NewLedger(cfg.Simulation.InitialCapital, log)
	if err != nil {
		return err
	}

	engine, err := backtest.New(backtest.Params{
		Feed:         feed,
		Strategy:     strat,
		Sizer:        sizer,
		Simulator:    simulator,
		Ledger:       ledger,
		RiskFreeRate: cfg.Simulation.RiskFreeRate,
		Journal:      jrnl,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := engine.Run(ctx)
	if err != nil {
		if res == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "run stopped early: %v\n", err)
	}

	report.Print(os.Stdout, res)
	return nil
}

func newJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}
