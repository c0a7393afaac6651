// Package backtest wires the data replay, strategy, sizing, execution and
// ledger together. The engine owns a single FIFO event queue and drains it to
// empty before the clock advances, so every event spawned by one market tick
// settles before the next tick exists.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/backsim/event"
	"github.com/rustyeddy/backsim/internal/id"
	"github.com/rustyeddy/backsim/journal"
	"github.com/rustyeddy/backsim/market"
	"github.com/rustyeddy/backsim/portfolio"
	"github.com/rustyeddy/backsim/sim"
	"github.com/rustyeddy/backsim/stats"
)

// ErrUnhandledEvent means an event variant reached the dispatcher that it
// does not know. It is fatal: the event union is closed and silently skipping
// a variant would corrupt the simulation.
var ErrUnhandledEvent = errors.New("backtest: unhandled event type")

// DataFeed replays historical bars. Implementations should be deterministic
// and offer O(1) bar lookup at the current tick.
type DataFeed interface {
	// Next advances one tick; false means the feed is exhausted.
	Next() bool
	// Timestamp is the current tick's time.
	Timestamp() time.Time
	// Bar returns the symbol's bar at the current tick, if one exists.
	Bar(symbol string) (market.Bar, bool)
	// Symbols lists every symbol the feed tracks.
	Symbols() []string
}

// Strategy inspects the feed's currently visible history and emits signals.
// It must not look ahead and must not touch the ledger.
type Strategy interface {
	Signals(feed DataFeed) []event.SignalEvent
}

// Sizer converts a signal into an order quantity. refPrice is the symbol's
// current close, equity the ledger's current equity. A size <= 0 drops the
// signal.
type Sizer interface {
	Size(sig event.SignalEvent, refPrice, equity float64) float64
}

// State of the engine: a run moves Running -> Finished exactly once.
type State uint8

const (
	Running State = iota
	Finished
)

// Counters are diagnostic tallies incremented at each dispatch. They never
// gate control flow.
type Counters struct {
	SignalsGenerated uint64
	OrdersPlaced     uint64
	FillsExecuted    uint64
	OrdersRejected   uint64
	DataMisses       uint64
}

// Params collects everything an engine needs. Feed, Strategy, Sizer,
// Simulator and Ledger are required; Journal and Logger are optional.
type Params struct {
	Feed      DataFeed
	Strategy  Strategy
	Sizer     Sizer
	Simulator *sim.Simulator
	Ledger    *portfolio.Ledger

	// RiskFreeRate is the annual risk-free rate used by the performance
	// report. Must be >= 0.
	RiskFreeRate float64

	Journal journal.Journal
	Logger  *zap.Logger
}

// Result is the read-only outcome of a run, handed to reporting.
type Result struct {
	Metrics     stats.Report
	EquityCurve []portfolio.EquityPoint
	Trades      []portfolio.Trade
	Holdings    map[string]portfolio.Position
	Counters    Counters
}

// Engine drives one backtest run. One engine owns one ledger and one queue;
// independent runs need independent engines sharing only read-only data.
type Engine struct {
	feed     DataFeed
	strategy Strategy
	sizer    Sizer
	sim      *sim.Simulator
	ledger   *portfolio.Ledger
	jrnl     journal.Journal

	riskFreeRate float64

	queue    event.Queue
	state    State
	counters Counters
	log      *zap.Logger
}

// New validates params and returns a ready-to-run engine.
func New(p Params) (*Engine, error) {
	if p.Feed == nil {
		return nil, fmt.Errorf("backtest: Feed is required")
	}
	if p.Strategy == nil {
		return nil, fmt.Errorf("backtest: Strategy is required")
	}
	if p.Sizer == nil {
		return nil, fmt.Errorf("backtest: Sizer is required")
	}
	if p.Simulator == nil {
		return nil, fmt.Errorf("backtest: Simulator is required")
	}
	if p.Ledger == nil {
		return nil, fmt.Errorf("backtest: Ledger is required")
	}
	if p.RiskFreeRate < 0 || math.IsNaN(p.RiskFreeRate) {
		return nil, fmt.Errorf("backtest: risk_free_rate must be >= 0, got %v", p.RiskFreeRate)
	}

	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		feed:         p.Feed,
		strategy:     p.Strategy,
		sizer:        p.Sizer,
		sim:          p.Simulator,
		ledger:       p.Ledger,
		jrnl:         p.Journal,
		riskFreeRate: p.RiskFreeRate,
		log:          log,
	}, nil
}

// State reports whether the engine is still Running or has Finished.
func (e *Engine) State() State { return e.state }

// Counters returns the diagnostic tallies accumulated so far.
func (e *Engine) Counters() Counters { return e.counters }

// Run executes the replay loop until the feed is exhausted or ctx is
// cancelled. Cancellation is honored only at tick boundaries, never
// mid-drain, so the ledger is always fully accounted when Run returns.
//
// On cancellation the partial Result accumulated so far is returned together
// with the context's error. A ledger invariant violation aborts the run and
// is returned as a *portfolio.InvariantError.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.state == Finished {
		return nil, fmt.Errorf("backtest: engine already finished; create a new engine per run")
	}

	var ctxErr error

	for {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		if !e.feed.Next() {
			break
		}

		ts := e.feed.Timestamp()
		e.queue.Push(event.MarketEvent{Time: ts})

		for {
			ev, ok := e.queue.Pop()
			if !ok {
				break
			}
			if err := e.dispatch(ev); err != nil {
				e.state = Finished
				return nil, err
			}
		}

		prices := make(map[string]float64)
		for _, sym := range e.feed.Symbols() {
			if b, ok := e.feed.Bar(sym); ok {
				prices[sym] = b.Close
			}
		}
		if err := e.ledger.MarkToMarket(ts, prices); err != nil {
			e.state = Finished
			return nil, err
		}
	}

	e.state = Finished

	res := e.buildResult()
	if e.jrnl != nil {
		if err := e.exportJournal(res); err != nil {
			return res, fmt.Errorf("backtest: journal export: %w", err)
		}
	}
	return res, ctxErr
}

// dispatch routes one event by variant. Every variant of the union is
// handled; anything else is ErrUnhandledEvent.
func (e *Engine) dispatch(ev event.Event) error {
	switch ev := ev.(type) {
	case event.MarketEvent:
		for _, sig := range e.strategy.Signals(e.feed) {
			e.counters.SignalsGenerated++
			e.queue.Push(sig)
		}
		return nil

	case event.SignalEvent:
		e.onSignal(ev)
		return nil

	case event.OrderEvent:
		return e.onOrder(ev)

	case event.FillEvent:
		e.counters.FillsExecuted++
		return e.ledger.ApplyFill(ev)

	default:
		return fmt.Errorf("%w: %T", ErrUnhandledEvent, ev)
	}
}

// onSignal sizes a signal into a market order. Flat signals close out the
// current holding; directional signals are sized by the Sizer. Undersized
// signals are dropped without an order.
func (e *Engine) onSignal(sig event.SignalEvent) {
	bar, ok := e.feed.Bar(sig.Symbol)
	if !ok {
		e.counters.DataMisses++
		e.log.Warn("no bar for signal this tick",
			zap.String("symbol", sig.Symbol),
			zap.Time("tick", sig.Time))
		return
	}

	var side event.Side
	var qty float64

	switch sig.Direction {
	case event.Flat:
		pos, held := e.ledger.Holding(sig.Symbol)
		if !held || pos.Qty == 0 {
			return
		}
		qty = math.Abs(pos.Qty)
		side = event.Sell
		if pos.Qty < 0 {
			side = event.Buy
		}

	case event.Long, event.Short:
		qty = e.sizer.Size(sig, bar.Close, e.ledger.Equity())
		if qty <= 0 {
			return
		}
		side = event.Buy
		if sig.Direction == event.Short {
			side = event.Sell
		}

	default:
		return
	}

	e.counters.OrdersPlaced++
	e.queue.Push(event.OrderEvent{
		ID:     id.New(),
		Time:   sig.Time,
		Symbol: sig.Symbol,
		Side:   side,
		Kind:   event.Market,
		Qty:    qty,
	})
}

// onOrder executes an order against the current bar. A missing bar or a
// rejected order is logged and counted but never stops the tick; other
// symbols in the same tick still process.
func (e *Engine) onOrder(o event.OrderEvent) error {
	bar, ok := e.feed.Bar(o.Symbol)
	if !ok {
		e.counters.DataMisses++
		e.log.Warn("no bar for order this tick",
			zap.String("symbol", o.Symbol),
			zap.String("order_id", o.ID),
			zap.Time("tick", o.Time))
		return nil
	}

	fill, err := e.sim.Execute(o, bar)
	if err != nil {
		if errors.Is(err, sim.ErrOrderRejected) {
			e.counters.OrdersRejected++
			e.log.Warn("order rejected",
				zap.String("symbol", o.Symbol),
				zap.String("order_id", o.ID),
				zap.Error(err))
			return nil
		}
		return err
	}
	if fill != nil {
		e.queue.Push(*fill)
	}
	return nil
}

func (e *Engine) buildResult() *Result {
	curve := e.ledger.EquityCurve()
	trades := e.ledger.TradeHistory()

	return &Result{
		Metrics:     stats.Compute(curve, trades, e.ledger.InitialCapital(), e.riskFreeRate),
		EquityCurve: curve,
		Trades:      trades,
		Holdings:    e.ledger.Holdings(),
		Counters:    e.counters,
	}
}

// exportJournal writes the run's trades and equity curve after the replay
// loop, keeping all blocking I/O out of the loop itself.
func (e *Engine) exportJournal(res *Result) error {
	for _, t := range res.Trades {
		rec := journal.TradeRecord{
			TradeID:    id.New(),
			Symbol:     t.Symbol,
			Qty:        t.Qty,
			ExitPrice:  t.ExitPrice,
			RealizedPL: t.RealizedPL,
			Commission: t.Commission,
			CloseTime:  t.Time,
		}
		if err := e.jrnl.RecordTrade(rec); err != nil {
			return err
		}
	}
	for _, p := range res.EquityCurve {
		snap := journal.EquitySnapshot{
			Time:           p.Time,
			Equity:         p.Equity,
			Cash:           p.Cash,
			PositionsValue: p.PositionsValue,
			Drawdown:       p.Drawdown,
			HighWater:      p.HighWater,
		}
		if err := e.jrnl.RecordEquity(snap); err != nil {
			return err
		}
	}
	return nil
}
