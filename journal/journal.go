// Package journal persists closed trades and equity snapshots from a run.
// The engine writes to a journal after the replay loop finishes; journals
// never feed back into the simulation.
package journal

import "time"

// TradeRecord is one closed (or partially closed) position, as stored.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Qty        float64
	ExitPrice  float64
	RealizedPL float64
	Commission float64
	CloseTime  time.Time
}

// EquitySnapshot is one mark-to-market point, as stored.
type EquitySnapshot struct {
	Time           time.Time
	Equity         float64
	Cash           float64
	PositionsValue float64
	Drawdown       float64
	HighWater      float64
}

// Journal records run output. Implementations: SQLite, CSV, Nop.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Useful default when persistence is not wanted.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
