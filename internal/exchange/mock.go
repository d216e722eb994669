package exchange

import (
	"context"
	"time"

	"SpotSentinel/internal/model"
)

// MockClient returns controllable fixed data for development and testing.
type MockClient struct {
	Price    float64
	Book     model.OrderBook
	Bars     []model.OHLCV
	Balances model.Balance

	TickerErr  error
	BookErr    error
	OHLCVErr   error
	BalanceErr error
	OrderErr   error

	// FillPrice overrides the synthesized fill price when non-zero.
	FillPrice float64

	Buys  []float64 // quote amounts of placed buys
	Sells []float64 // base amounts of placed sells
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) FetchTicker(_ context.Context, _ string) (model.Tick, error) {
	if m.TickerErr != nil {
		return model.Tick{}, m.TickerErr
	}
	return model.Tick{Price: m.Price, Time: time.Now().UTC()}, nil
}

func (m *MockClient) FetchOrderBook(_ context.Context, _ string, _ int) (model.OrderBook, error) {
	if m.BookErr != nil {
		return model.OrderBook{}, m.BookErr
	}
	return m.Book, nil
}

func (m *MockClient) FetchOHLCV(_ context.Context, _, _ string, _ int) ([]model.OHLCV, error) {
	if m.OHLCVErr != nil {
		return nil, m.OHLCVErr
	}
	return m.Bars, nil
}

func (m *MockClient) FetchBalance(_ context.Context, _ string) (model.Balance, error) {
	if m.BalanceErr != nil {
		return model.Balance{}, m.BalanceErr
	}
	return m.Balances, nil
}

func (m *MockClient) CreateMarketBuy(_ context.Context, _ string, quoteAmount float64) (model.Fill, error) {
	if m.OrderErr != nil {
		return model.Fill{}, m.OrderErr
	}
	m.Buys = append(m.Buys, quoteAmount)
	price := m.fillPrice()
	return model.Fill{
		OrderID:  "mock-buy",
		Side:     model.SideBuy,
		Price:    price,
		Quantity: quoteAmount / price,
		Time:     time.Now().UTC(),
	}, nil
}

func (m *MockClient) CreateMarketSell(_ context.Context, _ string, baseAmount float64) (model.Fill, error) {
	if m.OrderErr != nil {
		return model.Fill{}, m.OrderErr
	}
	m.Sells = append(m.Sells, baseAmount)
	return model.Fill{
		OrderID:  "mock-sell",
		Side:     model.SideSell,
		Price:    m.fillPrice(),
		Quantity: baseAmount,
		Time:     time.Now().UTC(),
	}, nil
}

func (m *MockClient) fillPrice() float64 {
	if m.FillPrice > 0 {
		return m.FillPrice
	}
	return m.Price
}
