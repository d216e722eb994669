package indicator

import (
	"math"
	"time"
)

const cooldownEpsilon = 1e-9

// DynamicCooldown derives the next loop sleep from recent close-to-close
// volatility: the mean absolute percentage return over the most recent 10
// closes, clamped to [min, max]. Higher volatility means a shorter
// cooldown. With fewer than 6 closes the static base interval is used.
func DynamicCooldown(closes []float64, base, min, max time.Duration) time.Duration {
	if len(closes) < 6 {
		return base
	}
	if len(closes) > 10 {
		closes = closes[len(closes)-10:]
	}

	sum := 0.0
	n := 0
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		sum += math.Abs(closes[i]-closes[i-1]) / closes[i-1]
		n++
	}
	if n == 0 {
		return base
	}
	vol := sum / float64(n)

	seconds := 1.0 / (vol*50 + cooldownEpsilon)
	cooldown := time.Duration(seconds * float64(time.Second))
	if cooldown < min {
		return min
	}
	if cooldown > max {
		return max
	}
	return cooldown
}
