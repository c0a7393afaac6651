// Package risk converts signals into order quantities. Sizers are the only
// place signal strength is interpreted; the engine drops any size <= 0
// without placing an order.
package risk

import (
	"math"

	"github.com/rustyeddy/backsim/event"
)

// FixedSizer orders the same number of units for every signal.
type FixedSizer struct {
	Units float64
}

func (s FixedSizer) Size(_ event.SignalEvent, _, _ float64) float64 {
	return s.Units
}

// EquityPctSizer spends a fraction of current equity per order, scaled by
// signal strength when the strategy provides one in (0, 1).
type EquityPctSizer struct {
	// Pct is the fraction of equity to allocate, in (0, 1].
	Pct float64
}

func (s EquityPctSizer) Size(sig event.SignalEvent, refPrice, equity float64) float64 {
	if refPrice <= 0 || equity <= 0 || s.Pct <= 0 {
		return 0
	}

	frac := s.Pct
	if sig.Strength > 0 && sig.Strength < 1 {
		frac *= sig.Strength
	}

	return math.Floor(equity * frac / refPrice)
}
