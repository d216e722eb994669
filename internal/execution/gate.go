// Package execution wraps order placement with bounded retries, quantity
// truncation and dry-run simulation. It is invoked only by the trading
// state machine.
package execution

import (
	"context"
	"math"
	"time"

	"SpotSentinel/internal/exchange"
	"SpotSentinel/internal/model"
)

// Gate places market orders for one symbol.
type Gate struct {
	client   exchange.Client
	symbol   string
	attempts int
	delay    time.Duration
	step     float64
	dryRun   bool
	paper    *PaperAccount
}

// NewGate creates an execution gate. paper must be non-nil when dryRun is
// set; it is ignored otherwise.
func NewGate(client exchange.Client, symbol string, attempts int, delay time.Duration, step float64, dryRun bool, paper *PaperAccount) *Gate {
	return &Gate{
		client:   client,
		symbol:   symbol,
		attempts: attempts,
		delay:    delay,
		step:     step,
		dryRun:   dryRun,
		paper:    paper,
	}
}

// DryRun reports whether orders are simulated.
func (g *Gate) DryRun() bool { return g.dryRun }

// TruncateToStep floors v to a multiple of step. Truncation rather than
// rounding avoids "insufficient balance" rejections when the computed
// amount sits just above the held balance.
func TruncateToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	q := v / step
	// Nudge by one part in 1e12 so exact multiples survive the division.
	return math.Floor(q+q*1e-12) * step
}

// Balance returns the free balances: the simulated account in dry-run
// mode, the exchange otherwise.
func (g *Gate) Balance(ctx context.Context) (model.Balance, error) {
	if g.dryRun {
		return g.paper.Balance(), nil
	}
	return exchange.Retry(ctx, g.attempts, g.delay, "fetch balance", func(ctx context.Context) (model.Balance, error) {
		return g.client.FetchBalance(ctx, g.symbol)
	})
}

// MarketBuy spends quoteAmount of quote currency at market. observedPrice
// is the latest ticker price, used to size the base quantity and as the
// final fill-price fallback.
func (g *Gate) MarketBuy(ctx context.Context, quoteAmount, observedPrice float64) (model.Fill, error) {
	quantity := TruncateToStep(quoteAmount/observedPrice, g.step)
	notional := quantity * observedPrice

	if g.dryRun {
		return g.paper.Buy(notional, observedPrice, quantity)
	}

	fill, err := exchange.Retry(ctx, g.attempts, g.delay, "market buy", func(ctx context.Context) (model.Fill, error) {
		return g.client.CreateMarketBuy(ctx, g.symbol, notional)
	})
	if err != nil {
		return model.Fill{}, err
	}
	return g.normalize(fill, observedPrice, quantity), nil
}

// MarketSell liquidates baseAmount of the base asset at market.
func (g *Gate) MarketSell(ctx context.Context, baseAmount, observedPrice float64) (model.Fill, error) {
	quantity := TruncateToStep(baseAmount, g.step)

	if g.dryRun {
		return g.paper.Sell(quantity, observedPrice)
	}

	fill, err := exchange.Retry(ctx, g.attempts, g.delay, "market sell", func(ctx context.Context) (model.Fill, error) {
		return g.client.CreateMarketSell(ctx, g.symbol, quantity)
	})
	if err != nil {
		return model.Fill{}, err
	}
	return g.normalize(fill, observedPrice, quantity), nil
}

// normalize backfills fill fields the exchange did not report. The price
// preference is average fill, then first partial fill (both resolved by
// the client), then the requested/observed price.
func (g *Gate) normalize(fill model.Fill, observedPrice, requestedQty float64) model.Fill {
	if fill.Price == 0 {
		fill.Price = observedPrice
	}
	if fill.Quantity == 0 {
		fill.Quantity = requestedQty
	}
	return fill
}
