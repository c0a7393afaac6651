// Package report renders a run result as plain text. Plotting and richer
// report formats live outside this repo.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rustyeddy/backsim/backtest"
)

// Print writes a human-readable summary of a backtest result.
func Print(w io.Writer, res *backtest.Result) {
	m := res.Metrics

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if !m.Start.IsZero() {
		fmt.Fprintf(w, "Start:          %s\n", m.Start.Format(time.RFC3339))
		fmt.Fprintf(w, "End:            %s\n", m.End.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Ticks:          %d\n", len(res.EquityCurve))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total Return:   %.2f%%\n", 100*m.TotalReturnPct)
	fmt.Fprintf(w, "Annual Return:  %.2f%%\n", 100*m.AnnualReturnPct)
	fmt.Fprintf(w, "Sharpe Ratio:   %.3f\n", m.SharpeRatio)
	fmt.Fprintf(w, "Sortino Ratio:  %s\n", ratio(m.SortinoRatio))
	fmt.Fprintf(w, "Max Drawdown:   %.2f%%\n", 100*m.MaxDrawdownPct)
	fmt.Fprintf(w, "Calmar Ratio:   %.3f\n", m.CalmarRatio)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trades")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Closed Trades:  %d\n", m.TotalTrades)
	fmt.Fprintf(w, "Wins / Losses:  %d / %d\n", m.WinningTrades, m.LosingTrades)
	fmt.Fprintf(w, "Win Rate:       %.2f%%\n", 100*m.WinRate)
	fmt.Fprintf(w, "Profit Factor:  %s\n", ratio(m.ProfitFactor))

	if len(res.Holdings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Positions")
		fmt.Fprintln(w, "--------------------------------------------------")
		for sym, p := range res.Holdings {
			fmt.Fprintf(w, "%-12s qty %.2f @ %.5f\n", sym, p.Qty, p.AvgPrice)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagnostics")
	fmt.Fprintln(w, "--------------------------------------------------")
	c := res.Counters
	fmt.Fprintf(w, "Signals:        %d\n", c.SignalsGenerated)
	fmt.Fprintf(w, "Orders:         %d\n", c.OrdersPlaced)
	fmt.Fprintf(w, "Fills:          %d\n", c.FillsExecuted)
	fmt.Fprintf(w, "Rejected:       %d\n", c.OrdersRejected)
	fmt.Fprintf(w, "Data Misses:    %d\n", c.DataMisses)
	fmt.Fprintln(w)
}

func ratio(x float64) string {
	if math.IsInf(x, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.3f", x)
}
