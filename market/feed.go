package market

import (
	"fmt"
	"sort"
	"time"
)

// MemoryFeed replays already-loaded bars in timestamp order. It advances over
// the union of all timestamps seen across symbols; a symbol with no bar at the
// current timestamp simply reports no data for that tick.
//
// Lookups are O(1) per symbol once the feed is built, and a feed is safe to
// share across runs as read-only data as long as each run drives its own
// cursor via Clone.
type MemoryFeed struct {
	symbols []string
	times   []time.Time
	bars    map[string]map[int64]Bar

	cursor int
}

// NewMemoryFeed builds a feed from a flat slice of bars. Bars may arrive in
// any order; they are indexed by (symbol, timestamp). A duplicate
// (symbol, timestamp) pair is an error.
func NewMemoryFeed(bars []Bar) (*MemoryFeed, error) {
	f := &MemoryFeed{
		bars:   make(map[string]map[int64]Bar),
		cursor: -1,
	}

	seen := make(map[int64]struct{})

	for _, b := range bars {
		if b.Symbol == "" {
			return nil, fmt.Errorf("market: bar with empty symbol at %s", b.Time)
		}
		bySym, ok := f.bars[b.Symbol]
		if !ok {
			bySym = make(map[int64]Bar)
			f.bars[b.Symbol] = bySym
			f.symbols = append(f.symbols, b.Symbol)
		}

		key := b.Time.UnixNano()
		if _, dup := bySym[key]; dup {
			return nil, fmt.Errorf("market: duplicate bar for %s at %s", b.Symbol, b.Time)
		}
		bySym[key] = b

		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			f.times = append(f.times, b.Time)
		}
	}

	sort.Slice(f.times, func(i, j int) bool { return f.times[i].Before(f.times[j]) })
	sort.Strings(f.symbols)

	return f, nil
}

// Next advances the feed one tick. It returns false when the feed is
// exhausted.
func (f *MemoryFeed) Next() bool {
	if f.cursor+1 >= len(f.times) {
		return false
	}
	f.cursor++
	return true
}

// Timestamp returns the current tick's timestamp. It is only meaningful after
// a successful Next.
func (f *MemoryFeed) Timestamp() time.Time {
	if f.cursor < 0 || f.cursor >= len(f.times) {
		return time.Time{}
	}
	return f.times[f.cursor]
}

// Bar returns the symbol's bar at the current timestamp, if one exists.
func (f *MemoryFeed) Bar(symbol string) (Bar, bool) {
	if f.cursor < 0 || f.cursor >= len(f.times) {
		return Bar{}, false
	}
	b, ok := f.bars[symbol][f.times[f.cursor].UnixNano()]
	return b, ok
}

// Symbols returns the symbols the feed tracks, sorted.
func (f *MemoryFeed) Symbols() []string {
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// Len returns the number of ticks in the feed.
func (f *MemoryFeed) Len() int { return len(f.times) }

// Clone returns a feed sharing this feed's immutable bar data but with an
// independent cursor, so concurrent runs never share mutable state.
func (f *MemoryFeed) Clone() *MemoryFeed {
	return &MemoryFeed{
		symbols: f.symbols,
		times:   f.times,
		bars:    f.bars,
		cursor:  -1,
	}
}
