package strategies

import (
	"github.com/rustyeddy/backsim/backtest"
	"github.com/rustyeddy/backsim/event"
)

// Noop never signals.
type Noop struct{}

func (Noop) Signals(backtest.DataFeed) []event.SignalEvent { return nil }
