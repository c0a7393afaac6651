package strategies

import (
	"github.com/rustyeddy/backsim/backtest"
	"github.com/rustyeddy/backsim/event"
	"github.com/rustyeddy/backsim/indicators"
)

// MACross trades a fast/slow EMA crossover per symbol: long on a bull cross,
// short on a bear cross. The resulting position flip is handled by the
// ledger; the strategy only signals direction.
type MACross struct {
	fastPeriod int
	slowPeriod int

	state map[string]*crossState
}

type crossState struct {
	fast *indicators.EMA
	slow *indicators.EMA

	lastDiff     float64
	haveLastDiff bool
}

// NewMACross returns a crossover strategy. Defaults: fast 10, slow 30.
func NewMACross(fast, slow int) *MACross {
	if fast <= 0 {
		fast = 10
	}
	if slow <= 0 {
		slow = 30
	}
	return &MACross{
		fastPeriod: fast,
		slowPeriod: slow,
		state:      make(map[string]*crossState),
	}
}

func (s *MACross) Signals(feed backtest.DataFeed) []event.SignalEvent {
	var sigs []event.SignalEvent

	for _, sym := range feed.Symbols() {
		bar, ok := feed.Bar(sym)
		if !ok {
			continue
		}

		st := s.state[sym]
		if st == nil {
			st = &crossState{
				fast: indicators.NewEMA(s.fastPeriod),
				slow: indicators.NewEMA(s.slowPeriod),
			}
			s.state[sym] = st
		}

		st.fast.Update(bar.Close)
		st.slow.Update(bar.Close)

		if !st.fast.Ready() || !st.slow.Ready() {
			continue
		}

		diff := st.fast.Value() - st.slow.Value()

		if !st.haveLastDiff {
			st.lastDiff = diff
			st.haveLastDiff = true
			continue
		}

		bullCross := diff > 0 && st.lastDiff <= 0
		bearCross := diff < 0 && st.lastDiff >= 0
		st.lastDiff = diff

		switch {
		case bullCross:
			sigs = append(sigs, event.SignalEvent{
				Time:      feed.Timestamp(),
				Symbol:    sym,
				Direction: event.Long,
				Strength:  1,
			})
		case bearCross:
			sigs = append(sigs, event.SignalEvent{
				Time:      feed.Timestamp(),
				Symbol:    sym,
				Direction: event.Short,
				Strength:  1,
			})
		}
	}

	return sigs
}
