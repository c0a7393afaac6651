package portfolio

import "time"

// Position is a signed holding in one symbol: positive quantity is long,
// negative is short. AvgPrice is the average entry price and is only
// meaningful while Qty != 0.
type Position struct {
	Symbol   string
	Qty      float64
	AvgPrice float64
}

// Trade records a full or partial close of a position. Qty is the unsigned
// quantity closed; RealizedPL is measured against the position's average
// entry price at the time of the close.
type Trade struct {
	Symbol     string
	Qty        float64
	ExitPrice  float64
	RealizedPL float64
	Commission float64
	Time       time.Time
}

// EquityPoint is one mark-to-market snapshot. Exactly one is appended per
// processed tick; the sequence is the canonical output of a run.
type EquityPoint struct {
	Time           time.Time
	Equity         float64
	Cash           float64
	PositionsValue float64
	Drawdown       float64
	DrawdownPct    float64
	HighWater      float64
}
