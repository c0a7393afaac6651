// Package portfolio is the authoritative ledger of a simulation run: cash,
// signed per-symbol positions with average entry price, the closed-trade log
// and the equity curve. Only fills mutate positions; only MarkToMarket
// appends equity points. One ledger belongs to exactly one run.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/backsim/event"
)

// InvariantError is fatal: the ledger reached a state that violates its
// accounting invariants (non-finite price or equity). It identifies the tick
// at which the violation surfaced.
type InvariantError struct {
	Time   time.Time
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("portfolio: invariant violation at %s: %s",
		e.Time.Format(time.RFC3339), e.Reason)
}

// Ledger tracks cash and positions across fills and marks equity once per
// tick. All accessors return copies; internal state is never handed out.
type Ledger struct {
	initialCapital float64
	cash           float64

	positions map[string]*Position
	lastMark  map[string]float64

	trades []Trade
	curve  []EquityPoint

	highWater float64
	log       *zap.Logger
}

// NewLedger returns a ledger starting with the given cash balance.
func NewLedger(initialCapital float64, log *zap.Logger) (*Ledger, error) {
	if initialCapital <= 0 || !isFinite(initialCapital) {
		return nil, fmt.Errorf("portfolio: initial capital must be positive, got %v", initialCapital)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]*Position),
		lastMark:       make(map[string]float64),
		highWater:      initialCapital,
		log:            log,
	}, nil
}

// ApplyFill settles one fill against cash and the symbol's position.
//
// Cash always moves by fill notional plus commission on buys, minus
// commission on sells; there is no other cash movement anywhere in the
// ledger. The position update is one of four cases: open from flat, add in
// the same direction (average price re-weighted), partial reduction (realize
// P&L on the closed quantity, average untouched), or full close / flip
// (realize on the whole held quantity; any remainder opens the opposite
// direction at the fill price).
func (l *Ledger) ApplyFill(f event.FillEvent) error {
	if f.Qty <= 0 || !isFinite(f.Qty) {
		return &InvariantError{Time: f.Time, Reason: fmt.Sprintf("fill quantity %v for %s", f.Qty, f.Symbol)}
	}
	if !isFinite(f.Price) || f.Price < 0 {
		return &InvariantError{Time: f.Time, Reason: fmt.Sprintf("fill price %v for %s", f.Price, f.Symbol)}
	}
	if !isFinite(f.Commission) || f.Commission < 0 {
		return &InvariantError{Time: f.Time, Reason: fmt.Sprintf("fill commission %v for %s", f.Commission, f.Symbol)}
	}
	if f.Side != event.Buy && f.Side != event.Sell {
		return &InvariantError{Time: f.Time, Reason: fmt.Sprintf("fill side %d for %s", f.Side, f.Symbol)}
	}

	if f.Side == event.Buy {
		l.cash -= f.Price*f.Qty + f.Commission
	} else {
		l.cash += f.Price*f.Qty - f.Commission
	}

	delta := f.Qty * f.Side.Sign()
	p := l.positions[f.Symbol]

	switch {
	case p == nil || p.Qty == 0:
		// Opening from flat.
		l.positions[f.Symbol] = &Position{
			Symbol:   f.Symbol,
			Qty:      delta,
			AvgPrice: f.Price,
		}

	case sameSign(p.Qty, delta):
		// Adding in the same direction: re-weight the average entry price.
		p.AvgPrice = (p.Qty*p.AvgPrice + delta*f.Price) / (p.Qty + delta)
		p.Qty += delta

	case math.Abs(delta) < math.Abs(p.Qty):
		// Partial reduction: realize on the closed quantity only.
		closed := math.Abs(delta)
		l.realize(f, p, closed)
		p.Qty += delta

	default:
		// Full close, possibly flipping into the opposite direction.
		closed := math.Abs(p.Qty)
		l.realize(f, p, closed)

		remainder := p.Qty + delta
		if remainder == 0 {
			delete(l.positions, f.Symbol)
		} else {
			p.Qty = remainder
			p.AvgPrice = f.Price
		}
	}

	return nil
}

// realize books a Trade for closing `closed` units of p at the fill price.
func (l *Ledger) realize(f event.FillEvent, p *Position, closed float64) {
	sign := 1.0
	if p.Qty < 0 {
		sign = -1.0
	}
	pl := (f.Price - p.AvgPrice) * closed * sign

	l.trades = append(l.trades, Trade{
		Symbol:     f.Symbol,
		Qty:        closed,
		ExitPrice:  f.Price,
		RealizedPL: pl,
		Commission: f.Commission,
		Time:       f.Time,
	})

	l.log.Debug("position closed",
		zap.String("symbol", f.Symbol),
		zap.Float64("qty", closed),
		zap.Float64("exit", f.Price),
		zap.Float64("realized_pl", pl))
}

// MarkToMarket recomputes equity from cash plus every open position at the
// given prices, updates the high-water mark and appends one equity point.
// Call it exactly once per tick, fills or not.
//
// A held symbol missing from prices is marked at its last observed price
// (falling back to average entry before any mark), so a one-tick data gap
// does not zero out equity.
func (l *Ledger) MarkToMarket(ts time.Time, prices map[string]float64) error {
	for sym, px := range prices {
		if !isFinite(px) {
			return &InvariantError{Time: ts, Reason: fmt.Sprintf("mark price %v for %s", px, sym)}
		}
		l.lastMark[sym] = px
	}

	var positionsValue float64
	for sym, p := range l.positions {
		mark, ok := l.lastMark[sym]
		if !ok {
			mark = p.AvgPrice
		}
		positionsValue += p.Qty * mark
	}

	equity := l.cash + positionsValue
	if !isFinite(equity) {
		return &InvariantError{Time: ts, Reason: fmt.Sprintf("equity %v", equity)}
	}

	if equity > l.highWater {
		l.highWater = equity
	}
	drawdown := l.highWater - equity

	ddPct := 0.0
	if l.highWater > 0 {
		ddPct = drawdown / l.highWater
	}

	l.curve = append(l.curve, EquityPoint{
		Time:           ts,
		Equity:         equity,
		Cash:           l.cash,
		PositionsValue: positionsValue,
		Drawdown:       drawdown,
		DrawdownPct:    ddPct,
		HighWater:      l.highWater,
	})

	return nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// InitialCapital returns the starting cash balance.
func (l *Ledger) InitialCapital() float64 { return l.initialCapital }

// Equity returns the most recently marked equity, or the initial capital if
// no tick has been marked yet.
func (l *Ledger) Equity() float64 {
	if len(l.curve) == 0 {
		return l.initialCapital
	}
	return l.curve[len(l.curve)-1].Equity
}

// EquityCurve returns a copy of the equity curve.
func (l *Ledger) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(l.curve))
	copy(out, l.curve)
	return out
}

// TradeHistory returns a copy of the closed-trade log.
func (l *Ledger) TradeHistory() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Holdings returns a copy of all open positions keyed by symbol.
func (l *Ledger) Holdings() map[string]Position {
	out := make(map[string]Position, len(l.positions))
	for sym, p := range l.positions {
		out[sym] = *p
	}
	return out
}

// Holding returns the open position for a symbol, if any.
func (l *Ledger) Holding(symbol string) (Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// TotalPL returns current equity minus initial capital.
func (l *Ledger) TotalPL() float64 { return l.Equity() - l.initialCapital }

// TotalReturnPct returns the fractional return on initial capital.
func (l *Ledger) TotalReturnPct() float64 {
	return l.TotalPL() / l.initialCapital
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
