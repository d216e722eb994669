package indicator

import (
	"errors"
	"math"

	"SpotSentinel/internal/model"
)

// CalculateATR computes the average true range over the given period.
// True range per bar is max(high-low, |high-prevClose|, |low-prevClose|);
// the result is the arithmetic mean of the last `period` true ranges.
// Requires at least period+1 bars.
func CalculateATR(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, ErrInsufficientData
	}

	start := len(bars) - period
	sum := 0.0
	for i := start; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		tr := bars[i].High - bars[i].Low
		if hc := math.Abs(bars[i].High - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(bars[i].Low - prevClose); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(period), nil
}
