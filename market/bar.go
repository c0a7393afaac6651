package market

import "time"

// Bar represents one OHLC (Open, High, Low, Close) interval for a symbol.
// Bars are owned by the data feed; the engine only reads them.
type Bar struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
