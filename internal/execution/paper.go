package execution

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"SpotSentinel/internal/model"
)

// PaperAccount simulates exchange balances for dry-run mode. No network
// order is ever placed against it; fills are synthesized from the observed
// price and the state machine proceeds exactly as in live mode.
type PaperAccount struct {
	Quote     float64
	Base      float64
	Trades    int
	StartTime time.Time
}

// NewPaperAccount seeds a simulated account with quote currency only.
func NewPaperAccount(initialQuote float64) *PaperAccount {
	return &PaperAccount{Quote: initialQuote, StartTime: time.Now().UTC()}
}

// Balance returns the simulated free balances.
func (p *PaperAccount) Balance() model.Balance {
	return model.Balance{Quote: p.Quote, Base: p.Base}
}

// Buy converts quote into base at the given price and returns the
// synthesized fill.
func (p *PaperAccount) Buy(quoteAmount, price, quantity float64) (model.Fill, error) {
	if quoteAmount > p.Quote {
		return model.Fill{}, fmt.Errorf("insufficient quote balance: have %.4f, need %.4f", p.Quote, quoteAmount)
	}
	p.Quote -= quoteAmount
	p.Base += quantity
	p.Trades++
	return model.Fill{
		OrderID:  "paper-" + uuid.NewString(),
		Side:     model.SideBuy,
		Price:    price,
		Quantity: quantity,
		Time:     time.Now().UTC(),
		DryRun:   true,
	}, nil
}

// Sell converts base back into quote at the given price.
func (p *PaperAccount) Sell(baseAmount, price float64) (model.Fill, error) {
	if baseAmount > p.Base {
		return model.Fill{}, fmt.Errorf("insufficient base balance: have %.6f, need %.6f", p.Base, baseAmount)
	}
	p.Base -= baseAmount
	p.Quote += baseAmount * price
	p.Trades++
	return model.Fill{
		OrderID:  "paper-" + uuid.NewString(),
		Side:     model.SideSell,
		Price:    price,
		Quantity: baseAmount,
		Time:     time.Now().UTC(),
		DryRun:   true,
	}, nil
}
