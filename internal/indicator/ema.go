package indicator

import "errors"

// ErrInsufficientData is returned when a series is too short for the
// requested indicator. Callers treat it as "indicator unavailable" and
// fall back rather than aborting the tick.
var ErrInsufficientData = errors.New("not enough data")

// CalculateEMA computes the exponential moving average of the closes over
// the given period. The first `period` values seed the EMA with their
// simple average; the remaining values are folded in chronologically with
// smoothing factor k = 2/(period+1).
func CalculateEMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period {
		return 0, ErrInsufficientData
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += closes[i]
	}
	ema := seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		ema = closes[i]*k + ema*(1-k)
	}
	return ema, nil
}
