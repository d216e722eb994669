package indicator

import "SpotSentinel/internal/model"

// LiquidityImbalance sums price*size over the top `depth` levels on each
// side of the book and returns the ratio of the heavier side to the
// lighter one. A spike is flagged when the ratio reaches spikeRatio.
// If either side carries zero volume the result is (false, 0).
func LiquidityImbalance(bids, asks []model.PriceLevel, depth int, spikeRatio float64) (spike bool, ratio float64) {
	bidVol := sideVolume(bids, depth)
	askVol := sideVolume(asks, depth)
	if bidVol == 0 || askVol == 0 {
		return false, 0
	}

	if bidVol > askVol {
		ratio = bidVol / askVol
	} else {
		ratio = askVol / bidVol
	}
	return ratio >= spikeRatio, ratio
}

func sideVolume(levels []model.PriceLevel, depth int) float64 {
	if depth > len(levels) {
		depth = len(levels)
	}
	vol := 0.0
	for i := 0; i < depth; i++ {
		vol += levels[i].Price * levels[i].Size
	}
	return vol
}
