package event

import "time"

// Side is the direction of an order or fill: +1 buy, -1 sell.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Sign returns the side as a signed multiplier for quantity math.
func (s Side) Sign() float64 { return float64(s) }

// Direction is the stance a signal asks for. Flat requests an exit of
// whatever position is currently held.
type Direction int8

const (
	Flat  Direction = 0
	Long  Direction = +1
	Short Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	case Flat:
		return "FLAT"
	default:
		return "UNKNOWN"
	}
}

// Kind is the execution type of an order.
type Kind uint8

const (
	Market Kind = iota
	Limit
	Stop
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Stop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Event is the closed union flowing through the engine queue. The concrete
// variants are MarketEvent, SignalEvent, OrderEvent and FillEvent; the engine
// dispatch switch treats any other type as an error rather than skipping it.
type Event interface {
	When() time.Time
}

// MarketEvent marks one tick of the data replay. It carries no prices; the
// strategy reads bars from the feed directly.
type MarketEvent struct {
	Time time.Time
}

func (e MarketEvent) When() time.Time { return e.Time }

// SignalEvent is a strategy's directional opinion on one symbol. Strength is
// advisory (0..1 by convention) and is interpreted by the position sizer.
type SignalEvent struct {
	Time      time.Time
	Symbol    string
	Direction Direction
	Strength  float64
}

func (e SignalEvent) When() time.Time { return e.Time }

// OrderEvent is a sized request for execution. Qty is always positive; the
// side carries direction. LimitPrice is meaningful for Limit orders and
// StopPrice for Stop orders; both are zero otherwise.
type OrderEvent struct {
	ID         string
	Time       time.Time
	Symbol     string
	Side       Side
	Kind       Kind
	Qty        float64
	LimitPrice float64
	StopPrice  float64
}

func (e OrderEvent) When() time.Time { return e.Time }

// FillEvent is the result of executing one order: at most one per order,
// immutable once produced. Price includes slippage; Commission is the fee on
// the filled notional.
type FillEvent struct {
	ID         string
	OrderID    string
	Time       time.Time
	Symbol     string
	Side       Side
	Qty        float64
	Price      float64
	Commission float64
}

func (e FillEvent) When() time.Time { return e.Time }
