package model

import "time"

// OrderSide is the side of a market order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Fill is a normalized view of an executed market order.
type Fill struct {
	OrderID  string
	Side     OrderSide
	Price    float64 // average execution price
	Quantity float64 // filled base quantity
	Time     time.Time
	DryRun   bool
}

// Notional returns the quote value of the fill.
func (f Fill) Notional() float64 {
	return f.Price * f.Quantity
}
