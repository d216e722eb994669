package model

import "time"

// Tick is a point-in-time price snapshot from the exchange ticker.
type Tick struct {
	Price float64
	Time  time.Time
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceLevel is a single price+size entry on one side of the order book.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBook holds a depth-limited snapshot of bids and asks.
type OrderBook struct {
	Bids      []PriceLevel
	Asks      []PriceLevel
	FetchedAt time.Time
}

// Balance holds the free quote and base balances for the traded symbol.
type Balance struct {
	Quote float64
	Base  float64
}

// Closes extracts the close prices from a bar sequence in chronological order.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
