package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFO(t *testing.T) {
	t.Parallel()

	var q Queue

	for i := 0; i < 50; i++ {
		q.Push(MarketEvent{Time: time.Unix(int64(i), 0)})
	}
	assert.Equal(t, 50, q.Len())

	for i := 0; i < 50; i++ {
		e, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, time.Unix(int64(i), 0), e.When())
	}

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueueInterleavedPushPop(t *testing.T) {
	t.Parallel()

	var q Queue

	// Force wrap-around: keep the queue short while cycling many events
	// through it.
	next := int64(0)
	expect := int64(0)
	for round := 0; round < 100; round++ {
		for i := 0; i < 3; i++ {
			q.Push(MarketEvent{Time: time.Unix(next, 0)})
			next++
		}
		for i := 0; i < 2; i++ {
			e, ok := q.Pop()
			assert.True(t, ok)
			assert.Equal(t, time.Unix(expect, 0), e.When())
			expect++
		}
	}

	for {
		e, ok := q.Pop()
		if !ok {
			break
		}
		assert.Equal(t, time.Unix(expect, 0), e.When())
		expect++
	}
	assert.Equal(t, next, expect)
}

func TestQueueReset(t *testing.T) {
	t.Parallel()

	var q Queue
	q.Push(MarketEvent{})
	q.Push(SignalEvent{Symbol: "EURUSD"})
	q.Reset()

	assert.Equal(t, 0, q.Len())
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestSideAndDirectionStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "LONG", Long.String())
	assert.Equal(t, "SHORT", Short.String())
	assert.Equal(t, "FLAT", Flat.String())
	assert.Equal(t, "MARKET", Market.String())
	assert.Equal(t, "LIMIT", Limit.String())
	assert.Equal(t, "STOP", Stop.String())
}
