package model

// Position is the single mutable trading state for one run of the bot.
// The zero value is a flat position.
//
// Invariant: Open == false ⇔ Quantity == 0 ⇔ AvgEntry == 0. Stage counts
// the staged entries executed so far and resets to 0 on exit.
type Position struct {
	Open     bool
	Stage    int
	AvgEntry float64
	Quantity float64

	// HighestSinceFlat tracks the running price peak while flat, used for
	// dip detection on the first entry.
	HighestSinceFlat float64

	// TrailingPeak tracks the running price peak since entry, used for the
	// trailing-stop exit. Zero while flat.
	TrailingPeak float64
}

// IsFlat reports whether the position holds no inventory.
func (p Position) IsFlat() bool {
	return !p.Open && p.Quantity == 0 && p.AvgEntry == 0
}
