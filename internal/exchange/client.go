package exchange

import (
	"context"

	"SpotSentinel/internal/model"
)

// Client defines the raw exchange surface the bot consumes. Each call is a
// single network attempt; bounded retries live in the market and execution
// gates, not here.
type Client interface {
	FetchTicker(ctx context.Context, symbol string) (model.Tick, error)
	FetchOrderBook(ctx context.Context, symbol string, depth int) (model.OrderBook, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]model.OHLCV, error)
	FetchBalance(ctx context.Context, symbol string) (model.Balance, error)
	CreateMarketBuy(ctx context.Context, symbol string, quoteAmount float64) (model.Fill, error)
	CreateMarketSell(ctx context.Context, symbol string, baseAmount float64) (model.Fill, error)
	Name() string
}
