// Package sim converts orders into fills against a single bar. It models
// slippage and commission but owns no portfolio state: Execute is a pure
// function of (order, bar) plus the simulator's cost parameters.
package sim

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rustyeddy/backsim/event"
	"github.com/rustyeddy/backsim/internal/id"
	"github.com/rustyeddy/backsim/market"
)

// ErrOrderRejected means the order could not be interpreted (unknown kind,
// non-positive quantity). The order is dropped; the run continues.
var ErrOrderRejected = errors.New("sim: order rejected")

// Simulator prices orders against bars using proportional slippage and
// commission. Costs are validated at construction and never change during a
// run.
type Simulator struct {
	commissionPct float64
	slippagePct   float64
	log           *zap.Logger
}

// New returns a Simulator. commissionPct and slippagePct are fractions
// (0.001 = 0.1%) and must be non-negative.
func New(commissionPct, slippagePct float64, log *zap.Logger) (*Simulator, error) {
	if commissionPct < 0 || math.IsNaN(commissionPct) {
		return nil, fmt.Errorf("sim: commission_pct must be >= 0, got %v", commissionPct)
	}
	if slippagePct < 0 || math.IsNaN(slippagePct) {
		return nil, fmt.Errorf("sim: slippage_pct must be >= 0, got %v", slippagePct)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		commissionPct: commissionPct,
		slippagePct:   slippagePct,
		log:           log,
	}, nil
}

// Execute attempts to fill an order against the given bar.
//
// A (nil, nil) return means the order did not fill on this bar. Limit and
// stop orders that miss their price are not carried forward; the caller drops
// them (no resting order book).
//
// Fill rules:
//   - Market: fills at bar close, slipped against the trader.
//   - Limit buy: fills if limit >= bar low, at min(limit, bar high).
//     Limit sell: fills if limit <= bar high, at max(limit, bar low).
//     Limit fills are never slipped.
//   - Stop buy: triggers if stop <= bar high, at max(stop, bar low), slipped.
//     Stop sell: triggers if stop >= bar low, at min(stop, bar high), slipped.
func (s *Simulator) Execute(o event.OrderEvent, bar market.Bar) (*event.FillEvent, error) {
	if o.Qty <= 0 || math.IsNaN(o.Qty) {
		return nil, fmt.Errorf("%w: quantity %v", ErrOrderRejected, o.Qty)
	}
	if o.Side != event.Buy && o.Side != event.Sell {
		return nil, fmt.Errorf("%w: side %d", ErrOrderRejected, o.Side)
	}

	var price float64

	switch o.Kind {
	case event.Market:
		price = s.slip(bar.Close, o.Side)

	case event.Limit:
		px, ok := limitFill(o, bar)
		if !ok {
			s.log.Debug("limit order missed",
				zap.String("symbol", o.Symbol),
				zap.String("side", o.Side.String()),
				zap.Float64("limit", o.LimitPrice),
				zap.Float64("low", bar.Low),
				zap.Float64("high", bar.High))
			return nil, nil
		}
		price = px

	case event.Stop:
		px, ok := stopFill(o, bar)
		if !ok {
			s.log.Debug("stop order not triggered",
				zap.String("symbol", o.Symbol),
				zap.String("side", o.Side.String()),
				zap.Float64("stop", o.StopPrice),
				zap.Float64("low", bar.Low),
				zap.Float64("high", bar.High))
			return nil, nil
		}
		price = s.slip(px, o.Side)

	default:
		return nil, fmt.Errorf("%w: unknown order kind %d", ErrOrderRejected, o.Kind)
	}

	return &event.FillEvent{
		ID:         id.New(),
		OrderID:    o.ID,
		Time:       bar.Time,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Qty:        o.Qty,
		Price:      price,
		Commission: price * o.Qty * s.commissionPct,
	}, nil
}

// slip adjusts a price against the trader: buys pay more, sells receive less.
func (s *Simulator) slip(price float64, side event.Side) float64 {
	if side == event.Buy {
		return price * (1 + s.slippagePct)
	}
	return price * (1 - s.slippagePct)
}

func limitFill(o event.OrderEvent, bar market.Bar) (float64, bool) {
	if o.Side == event.Buy {
		if o.LimitPrice < bar.Low {
			return 0, false
		}
		return math.Min(o.LimitPrice, bar.High), true
	}
	if o.LimitPrice > bar.High {
		return 0, false
	}
	return math.Max(o.LimitPrice, bar.Low), true
}

func stopFill(o event.OrderEvent, bar market.Bar) (float64, bool) {
	if o.Side == event.Buy {
		if o.StopPrice > bar.High {
			return 0, false
		}
		return math.Max(o.StopPrice, bar.Low), true
	}
	if o.StopPrice < bar.Low {
		return 0, false
	}
	return math.Min(o.StopPrice, bar.High), true
}
