package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"SpotSentinel/internal/exchange"
	"SpotSentinel/internal/model"
)

// flakyClient fails the first N ticker calls, then succeeds.
type flakyClient struct {
	exchange.MockClient
	failures int
	calls    int
}

func (f *flakyClient) FetchTicker(ctx context.Context, symbol string) (model.Tick, error) {
	f.calls++
	if f.calls <= f.failures {
		return model.Tick{}, errors.New("connection reset")
	}
	return f.MockClient.FetchTicker(ctx, symbol)
}

func TestTicker_RetriesThenSucceeds(t *testing.T) {
	client := &flakyClient{failures: 2}
	client.Price = 123.45
	g := NewGate(client, "SOL/USDT", 3, time.Millisecond)

	tick, err := g.Ticker(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Price != 123.45 {
		t.Errorf("expected 123.45, got %v", tick.Price)
	}
	if client.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.calls)
	}
}

func TestTicker_ExhaustionReportsFailure(t *testing.T) {
	client := &flakyClient{failures: 10}
	g := NewGate(client, "SOL/USDT", 3, time.Millisecond)

	if _, err := g.Ticker(context.Background()); err == nil {
		t.Fatal("expected failure after retry exhaustion")
	}
	if client.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", client.calls)
	}
}

func TestOHLCVAndBook_PassThrough(t *testing.T) {
	client := &exchange.MockClient{
		Bars: []model.OHLCV{{Close: 100}, {Close: 101}},
		Book: model.OrderBook{
			Bids: []model.PriceLevel{{Price: 100, Size: 1}},
			Asks: []model.PriceLevel{{Price: 101, Size: 2}},
		},
	}
	g := NewGate(client, "SOL/USDT", 3, time.Millisecond)

	bars, err := g.OHLCV(context.Background(), "1min", 2)
	if err != nil || len(bars) != 2 {
		t.Fatalf("bars: err=%v len=%d", err, len(bars))
	}
	book, err := g.OrderBook(context.Background(), 10)
	if err != nil || len(book.Bids) != 1 || len(book.Asks) != 1 {
		t.Fatalf("book: err=%v %+v", err, book)
	}
}
