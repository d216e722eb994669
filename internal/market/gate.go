// Package market wraps the exchange's read-only endpoints with bounded
// retries. A call that exhausts its retry budget reports an error the
// caller treats as "skip this tick"; nothing here is fatal.
package market

import (
	"context"
	"time"

	"SpotSentinel/internal/exchange"
	"SpotSentinel/internal/model"
)

// Gate is the retrying market-data reader.
type Gate struct {
	client   exchange.Client
	symbol   string
	attempts int
	delay    time.Duration
}

// NewGate creates a market data gate for one symbol.
func NewGate(client exchange.Client, symbol string, attempts int, delay time.Duration) *Gate {
	return &Gate{client: client, symbol: symbol, attempts: attempts, delay: delay}
}

// Ticker returns the latest traded price.
func (g *Gate) Ticker(ctx context.Context) (model.Tick, error) {
	return exchange.Retry(ctx, g.attempts, g.delay, "fetch ticker", func(ctx context.Context) (model.Tick, error) {
		return g.client.FetchTicker(ctx, g.symbol)
	})
}

// OrderBook returns a depth-limited book snapshot.
func (g *Gate) OrderBook(ctx context.Context, depth int) (model.OrderBook, error) {
	return exchange.Retry(ctx, g.attempts, g.delay, "fetch order book", func(ctx context.Context) (model.OrderBook, error) {
		return g.client.FetchOrderBook(ctx, g.symbol, depth)
	})
}

// OHLCV returns the most recent candlestick bars in chronological order.
func (g *Gate) OHLCV(ctx context.Context, timeframe string, limit int) ([]model.OHLCV, error) {
	return exchange.Retry(ctx, g.attempts, g.delay, "fetch candles", func(ctx context.Context) ([]model.OHLCV, error) {
		return g.client.FetchOHLCV(ctx, g.symbol, timeframe, limit)
	})
}
