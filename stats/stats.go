// Package stats derives risk/return metrics from an equity curve and trade
// log. Every function is pure: same inputs, same report, no side effects.
//
// Annualization uses 252 trading days for ratio scaling and 365.25 calendar
// days for compounding, which assumes daily bars; on intraday or irregular
// data the ratios are still computed but should be read under that
// assumption.
package stats

import (
	"math"
	"time"

	"github.com/rustyeddy/backsim/portfolio"
)

const (
	tradingDaysPerYear  = 252.0
	calendarDaysPerYear = 365.25
)

// Report is a read-only snapshot of run performance. Percentages are
// fractions (0.1 = 10%).
type Report struct {
	TotalReturnPct  float64
	AnnualReturnPct float64
	SharpeRatio     float64
	SortinoRatio    float64
	MaxDrawdownPct  float64
	CalmarRatio     float64
	ProfitFactor    float64
	WinRate         float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	GrossProfit   float64
	GrossLoss     float64

	Start time.Time
	End   time.Time
}

// Compute builds a full report. riskFreeRate is annual; it is divided by 252
// to obtain the per-period hurdle for Sharpe and Sortino.
func Compute(curve []portfolio.EquityPoint, trades []portfolio.Trade, initialCapital, riskFreeRate float64) Report {
	r := Report{}

	if len(curve) > 0 {
		r.Start = curve[0].Time
		r.End = curve[len(curve)-1].Time
		r.TotalReturnPct = TotalReturnPct(curve, initialCapital)
		r.AnnualReturnPct = AnnualReturnPct(r.TotalReturnPct, r.Start, r.End)
		r.MaxDrawdownPct = MaxDrawdownPct(curve)
	}

	returns := periodReturns(curve)
	r.SharpeRatio = SharpeRatio(returns, riskFreeRate)
	r.SortinoRatio = SortinoRatio(returns, riskFreeRate)
	r.CalmarRatio = CalmarRatio(r.AnnualReturnPct, r.MaxDrawdownPct)

	r.TotalTrades = len(trades)
	for _, t := range trades {
		switch {
		case t.RealizedPL > 0:
			r.WinningTrades++
			r.GrossProfit += t.RealizedPL
		case t.RealizedPL < 0:
			r.LosingTrades++
			r.GrossLoss += -t.RealizedPL
		}
	}
	r.ProfitFactor = profitFactor(r.GrossProfit, r.GrossLoss)
	r.WinRate = winRate(r.WinningTrades, r.TotalTrades)

	return r
}

// TotalReturnPct is (final equity - initial capital) / initial capital.
func TotalReturnPct(curve []portfolio.EquityPoint, initialCapital float64) float64 {
	if len(curve) == 0 || initialCapital <= 0 {
		return 0
	}
	return (curve[len(curve)-1].Equity - initialCapital) / initialCapital
}

// AnnualReturnPct compounds the total return over the elapsed calendar days.
// Zero elapsed time yields 0.
func AnnualReturnPct(totalReturn float64, start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, calendarDaysPerYear/days) - 1
}

// SharpeRatio is sqrt(252) * mean(excess return) / std(return). A flat curve
// (zero variance) yields 0, never a division by zero.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sd := stddev(returns)
	if sd == 0 {
		return 0
	}
	excess := mean(returns) - riskFreeRate/tradingDaysPerYear
	return math.Sqrt(tradingDaysPerYear) * excess / sd
}

// SortinoRatio is the Sharpe numerator over downside deviation only. With no
// negative periods it returns +Inf when the mean return is positive, else 0.
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	m := mean(returns)
	if len(downside) == 0 {
		if m > 0 {
			return math.Inf(1)
		}
		return 0
	}

	sd := stddev(downside)
	if sd == 0 {
		return 0
	}
	excess := m - riskFreeRate/tradingDaysPerYear
	return math.Sqrt(tradingDaysPerYear) * excess / sd
}

// MaxDrawdownPct is the largest fractional drawdown on the curve; 0 for an
// empty curve.
func MaxDrawdownPct(curve []portfolio.EquityPoint) float64 {
	var maxDD float64
	for _, p := range curve {
		if p.DrawdownPct > maxDD {
			maxDD = p.DrawdownPct
		}
	}
	return maxDD
}

// CalmarRatio is annual return over the magnitude of max drawdown; 0 when
// there was no drawdown.
func CalmarRatio(annualReturn, maxDrawdownPct float64) float64 {
	if maxDrawdownPct == 0 {
		return 0
	}
	return annualReturn / math.Abs(maxDrawdownPct)
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

func winRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// periodReturns converts the equity curve into per-period fractional returns.
func periodReturns(curve []portfolio.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (curve[i].Equity-prev)/prev)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
