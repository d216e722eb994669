package trader

import "time"

// Stats accumulates session trading counters for reporting. Not safe for
// concurrent use; the polling loop is the only writer.
type Stats struct {
	StartedAt   time.Time
	Buys        int
	Sells       int
	Wins        int
	Losses      int
	RealizedPnL float64
}

// NewStats starts a counter window at the current time.
func NewStats() *Stats {
	return &Stats{StartedAt: time.Now().UTC()}
}

// RecordBuy counts an executed entry.
func (s *Stats) RecordBuy() { s.Buys++ }

// RecordSell counts an executed exit with its realized net PnL.
func (s *Stats) RecordSell(pnl float64) {
	s.Sells++
	s.RealizedPnL += pnl
	if pnl >= 0 {
		s.Wins++
	} else {
		s.Losses++
	}
}

// Reset clears the counters and restarts the window.
func (s *Stats) Reset() {
	*s = Stats{StartedAt: time.Now().UTC()}
}
