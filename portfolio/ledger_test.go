package portfolio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backsim/event"
)

func newTestLedger(t *testing.T, capital float64) *Ledger {
	t.Helper()
	l, err := NewLedger(capital, nil)
	require.NoError(t, err)
	return l
}

func fill(side event.Side, qty, price, commission float64) event.FillEvent {
	return event.FillEvent{
		Time:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Symbol:     "EURUSD",
		Side:       side,
		Qty:        qty,
		Price:      price,
		Commission: commission,
	}
}

func TestOpenFromFlat(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 1.1000, 0)))

	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, 100, p.Qty, 1e-9)
	assert.InDelta(t, 1.1000, p.AvgPrice, 1e-9)
	assert.InDelta(t, 100000-110, l.Cash(), 1e-9)
	assert.Empty(t, l.TradeHistory())
}

func TestSameDirectionAddReweightsAverage(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Buy, 50, 110, 0)))

	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, 150, p.Qty, 1e-9)
	// (100*100 + 50*110) / 150
	assert.InDelta(t, 103.3333333333, p.AvgPrice, 1e-6)
	assert.Empty(t, l.TradeHistory())
}

func TestShortAddReweightsAverage(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Sell, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Sell, 50, 110, 0)))

	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, -150, p.Qty, 1e-9)
	assert.InDelta(t, 103.3333333333, p.AvgPrice, 1e-6)
}

func TestPartialReduction(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Sell, 40, 105, 0)))

	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, 60, p.Qty, 1e-9)
	// Average of the retained quantity is untouched.
	assert.InDelta(t, 100, p.AvgPrice, 1e-9)

	trades := l.TradeHistory()
	require.Len(t, trades, 1)
	assert.InDelta(t, 40, trades[0].Qty, 1e-9)
	assert.InDelta(t, (105.0-100.0)*40, trades[0].RealizedPL, 1e-9)
	assert.InDelta(t, 105, trades[0].ExitPrice, 1e-9)
}

func TestFullClose(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Sell, 100, 105, 0)))

	_, ok := l.Holding("EURUSD")
	assert.False(t, ok)

	trades := l.TradeHistory()
	require.Len(t, trades, 1)
	assert.InDelta(t, 500, trades[0].RealizedPL, 1e-9)
	assert.InDelta(t, 100000+500, l.Cash(), 1e-9)
}

func TestPositionFlip(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Sell, 150, 105, 0)))

	// Realized on the 100 closed: (105-100)*100 = 500
	trades := l.TradeHistory()
	require.Len(t, trades, 1)
	assert.InDelta(t, 500, trades[0].RealizedPL, 1e-9)
	assert.InDelta(t, 100, trades[0].Qty, 1e-9)

	// Remainder opens short 50 @ the flip fill's price.
	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, -50, p.Qty, 1e-9)
	assert.InDelta(t, 105, p.AvgPrice, 1e-9)
}

func TestShortFlipToLong(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Sell, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Buy, 150, 95, 0)))

	trades := l.TradeHistory()
	require.Len(t, trades, 1)
	// Short closed at a lower price is a profit.
	assert.InDelta(t, (95.0-100.0)*100*-1, trades[0].RealizedPL, 1e-9)

	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, 50, p.Qty, 1e-9)
	assert.InDelta(t, 95, p.AvgPrice, 1e-9)
}

func TestRoundTripIsFlat(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 1.1000, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Sell, 100, 1.1000, 0)))

	assert.InDelta(t, 100000, l.Cash(), 1e-9)
	trades := l.TradeHistory()
	require.Len(t, trades, 1)
	assert.InDelta(t, 0, trades[0].RealizedPL, 1e-9)
	assert.Empty(t, l.Holdings())
}

func TestCashConservation(t *testing.T) {
	t.Parallel()

	// With zero costs, every fill moves cash by exactly signed(qty*price).
	l := newTestLedger(t, 100000)

	fills := []event.FillEvent{
		fill(event.Buy, 100, 1.1, 0),
		fill(event.Sell, 30, 1.12, 0),
		fill(event.Sell, 120, 1.09, 0),
		fill(event.Buy, 50, 1.08, 0),
	}

	expected := 100000.0
	for _, f := range fills {
		require.NoError(t, l.ApplyFill(f))
		expected -= f.Side.Sign() * f.Qty * f.Price
		assert.InDelta(t, expected, l.Cash(), 1e-9)
	}
}

func TestCommissionAndSlippageCashFlow(t *testing.T) {
	t.Parallel()

	// Slipped fill price 1.1000*1.0005, commission 0.1% of notional.
	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 1.10055, 0.110055)))

	assert.InDelta(t, 100000-(1.10055*100+0.110055), l.Cash(), 1e-9)
}

func TestMarkToMarketEquityAndDrawdown(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))

	marks := []float64{105, 110, 104, 108, 112}
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, px := range marks {
		require.NoError(t, l.MarkToMarket(ts.AddDate(0, 0, i), map[string]float64{"EURUSD": px}))
	}

	curve := l.EquityCurve()
	require.Len(t, curve, len(marks))

	// equity = cash + qty*mark at every point
	for i, px := range marks {
		assert.InDelta(t, 90000+100*px, curve[i].Equity, 1e-9, "point %d", i)
		assert.GreaterOrEqual(t, curve[i].Drawdown, 0.0)
	}

	// High-water mark is non-decreasing.
	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i].HighWater, curve[i-1].HighWater)
	}

	// Peak was at 110 -> equity 101000; trough after peak at 104 -> 100400.
	assert.InDelta(t, 101000, curve[1].HighWater, 1e-9)
	assert.InDelta(t, 101000-100400, curve[2].Drawdown, 1e-9)
	assert.InDelta(t, 600.0/101000, curve[2].DrawdownPct, 1e-12)
}

func TestMarkToMarketMissingPriceUsesLastMark(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, l.MarkToMarket(ts, map[string]float64{"EURUSD": 110}))
	// Gap tick: no price for the held symbol.
	require.NoError(t, l.MarkToMarket(ts.AddDate(0, 0, 1), map[string]float64{}))

	curve := l.EquityCurve()
	require.Len(t, curve, 2)
	assert.InDelta(t, curve[0].Equity, curve[1].Equity, 1e-9)
}

func TestInvariantViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		f    event.FillEvent
	}{
		{name: "nan_price", f: fill(event.Buy, 100, math.NaN(), 0)},
		{name: "negative_price", f: fill(event.Buy, 100, -1, 0)},
		{name: "zero_qty", f: fill(event.Buy, 0, 1.1, 0)},
		{name: "nan_commission", f: fill(event.Buy, 100, 1.1, math.NaN())},
		{name: "bad_side", f: event.FillEvent{Symbol: "EURUSD", Side: 3, Qty: 1, Price: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := newTestLedger(t, 100000)
			err := l.ApplyFill(tt.f)
			require.Error(t, err)

			var inv *InvariantError
			assert.True(t, errors.As(err, &inv))
		})
	}
}

func TestMarkToMarketNaNPriceIsFatal(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	err := l.MarkToMarket(ts, map[string]float64{"EURUSD": math.NaN()})
	require.Error(t, err)

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, ts, inv.Time)
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))
	require.NoError(t, l.ApplyFill(fill(event.Sell, 100, 105, 0)))
	require.NoError(t, l.MarkToMarket(time.Now(), map[string]float64{"EURUSD": 105}))

	trades := l.TradeHistory()
	trades[0].RealizedPL = -9999
	assert.InDelta(t, 500, l.TradeHistory()[0].RealizedPL, 1e-9)

	curve := l.EquityCurve()
	curve[0].Equity = -1
	assert.NotEqual(t, -1.0, l.EquityCurve()[0].Equity)

	require.NoError(t, l.ApplyFill(fill(event.Buy, 10, 100, 0)))
	h := l.Holdings()
	h["EURUSD"] = Position{Symbol: "EURUSD", Qty: 1e9}
	p, ok := l.Holding("EURUSD")
	require.True(t, ok)
	assert.InDelta(t, 10, p.Qty, 1e-9)
}

func TestTotalPLAndReturn(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t, 100000)
	require.NoError(t, l.ApplyFill(fill(event.Buy, 100, 100, 0)))
	require.NoError(t, l.MarkToMarket(time.Now(), map[string]float64{"EURUSD": 110}))

	assert.InDelta(t, 1000, l.TotalPL(), 1e-9)
	assert.InDelta(t, 0.01, l.TotalReturnPct(), 1e-12)
}

func TestNewLedgerRejectsBadCapital(t *testing.T) {
	t.Parallel()

	for _, capital := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewLedger(capital, nil)
		assert.Error(t, err, "capital %v", capital)
	}
}
