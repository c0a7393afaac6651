package strategies

import (
	"github.com/rustyeddy/backsim/backtest"
	"github.com/rustyeddy/backsim/event"
)

// OpenOnce goes long each symbol on the first bar it sees and then stays
// quiet. Useful as a buy-and-hold baseline and in tests.
type OpenOnce struct {
	opened map[string]bool
}

func NewOpenOnce() *OpenOnce {
	return &OpenOnce{opened: make(map[string]bool)}
}

func (s *OpenOnce) Signals(feed backtest.DataFeed) []event.SignalEvent {
	var sigs []event.SignalEvent
	for _, sym := range feed.Symbols() {
		if s.opened[sym] {
			continue
		}
		if _, ok := feed.Bar(sym); !ok {
			continue
		}
		s.opened[sym] = true
		sigs = append(sigs, event.SignalEvent{
			Time:      feed.Timestamp(),
			Symbol:    sym,
			Direction: event.Long,
			Strength:  1,
		})
	}
	return sigs
}
