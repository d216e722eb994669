// Package trader implements the risk/position state machine: staged DCA
// entries, trailing-stop and hard-stop exits, evaluated once per tick over
// an explicitly threaded Position value.
package trader

import "SpotSentinel/internal/model"

// trendTolerance is the fraction of the EMA the price may sit below while
// still passing the trend filter.
const trendTolerance = 0.985

// Params are the threshold rules driving the state machine. All level and
// threshold values are fractions, not percentages.
type Params struct {
	CapitalPerCycle float64
	DCALevels       []float64
	DCASplits       []float64
	DipConfirmation float64
	TSLProfitMin    float64
	TSLBack         float64
	StopLoss        float64
	MinNotional     float64
	QuoteFraction   float64
}

// TickInput carries everything the state machine needs for one evaluation.
type TickInput struct {
	Price          float64
	EMA            float64
	EMAValid       bool
	ATR            float64
	ATRValid       bool
	LiquiditySpike bool
	FlashCrash     bool
	QuoteBalance   float64
	BaseBalance    float64
}

// Action is the state machine's verdict for a tick.
type Action string

const (
	ActionHold Action = "hold"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Exit and entry reasons attached to decisions.
const (
	ReasonDipEntry           = "dip_entry"
	ReasonDCAStage           = "dca_stage"
	ReasonTrailingTakeProfit = "trailing_take_profit"
	ReasonStopLoss           = "stop_loss"
)

// Decision describes the order to place this tick, if any.
type Decision struct {
	Action      Action
	Stage       int     // index of the staged entry being placed (buys)
	QuoteAmount float64 // quote to spend (buys)
	BaseAmount  float64 // base to liquidate (sells)
	Reason      string
}

// Engine evaluates ticks against the configured thresholds. It holds no
// mutable state; the Position value is threaded through Decide and the
// Apply functions.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Parameters returns the engine's threshold rules.
func (e *Engine) Parameters() Params { return e.params }

// Decide updates the position's running peaks for this tick and returns
// the action to take. Exits are evaluated before entries and are never
// suppressed by the flash-crash or liquidity guards; profit-exit is
// checked before the hard stop, so it wins if both would fire.
func (e *Engine) Decide(pos model.Position, in TickInput) (model.Position, Decision) {
	price := in.Price

	if !pos.Open {
		if price > pos.HighestSinceFlat {
			pos.HighestSinceFlat = price
		}
	} else {
		if price > pos.TrailingPeak {
			pos.TrailingPeak = price
		}

		gross := (price - pos.AvgEntry) / pos.AvgEntry
		if gross >= e.params.TSLProfitMin && pos.TrailingPeak > 0 {
			retrace := (pos.TrailingPeak - price) / pos.TrailingPeak
			if retrace >= e.params.TSLBack {
				return pos, Decision{
					Action:     ActionSell,
					Stage:      pos.Stage,
					BaseAmount: pos.Quantity,
					Reason:     ReasonTrailingTakeProfit,
				}
			}
		}
		if gross <= -e.params.StopLoss {
			return pos, Decision{
				Action:     ActionSell,
				Stage:      pos.Stage,
				BaseAmount: pos.Quantity,
				Reason:     ReasonStopLoss,
			}
		}
	}

	// All buy transitions are suppressed while the flash-crash or
	// liquidity-imbalance guard is active.
	if in.FlashCrash || in.LiquiditySpike {
		return pos, Decision{Action: ActionHold}
	}
	if !e.trendOK(in) {
		return pos, Decision{Action: ActionHold}
	}

	if !pos.Open {
		if pos.HighestSinceFlat <= 0 {
			return pos, Decision{Action: ActionHold}
		}
		drop := (pos.HighestSinceFlat - price) / pos.HighestSinceFlat
		if drop >= e.params.DCALevels[0]+e.params.DipConfirmation {
			if quote := e.stageQuote(0, in.QuoteBalance); quote > 0 {
				return pos, Decision{
					Action:      ActionBuy,
					Stage:       0,
					QuoteAmount: quote,
					Reason:      ReasonDipEntry,
				}
			}
		}
		return pos, Decision{Action: ActionHold}
	}

	// Staged re-entry: pos.Stage entries have executed, so the next stage
	// index is pos.Stage itself.
	next := pos.Stage
	if next < len(e.params.DCALevels) {
		drop := (pos.AvgEntry - price) / pos.AvgEntry
		if drop >= e.params.DCALevels[next] {
			if quote := e.stageQuote(next, in.QuoteBalance); quote > 0 {
				return pos, Decision{
					Action:      ActionBuy,
					Stage:       next,
					QuoteAmount: quote,
					Reason:      ReasonDCAStage,
				}
			}
		}
	}

	return pos, Decision{Action: ActionHold}
}

// trendOK applies the EMA trend filter; an unavailable EMA passes.
func (e *Engine) trendOK(in TickInput) bool {
	if !in.EMAValid {
		return true
	}
	return in.Price >= in.EMA*trendTolerance
}

// stageQuote sizes a staged buy from the capital split, capped by the free
// quote balance (with a small buffer for fees and precision). Returns 0 if
// the result would sit below the exchange minimum notional.
func (e *Engine) stageQuote(stage int, quoteBalance float64) float64 {
	amount := e.params.CapitalPerCycle * e.params.DCASplits[stage]
	if limit := quoteBalance * e.params.QuoteFraction; amount > limit {
		amount = limit
	}
	if amount < e.params.MinNotional {
		return 0
	}
	return amount
}

// ApplyBuy folds an executed buy fill into the position: quantity adds,
// the average entry becomes the size-weighted mean of all fills, and the
// trailing peak starts at (or keeps above) the fill price.
func ApplyBuy(pos model.Position, fill model.Fill) model.Position {
	newQty := pos.Quantity + fill.Quantity
	if newQty <= 0 {
		return pos
	}
	pos.AvgEntry = (pos.AvgEntry*pos.Quantity + fill.Price*fill.Quantity) / newQty
	pos.Quantity = newQty
	pos.Stage++
	pos.Open = true
	if fill.Price > pos.TrailingPeak {
		pos.TrailingPeak = fill.Price
	}
	return pos
}

// ApplySell resets the position to flat after a full liquidation. Dip
// detection restarts from the exit price.
func ApplySell(pos model.Position, fill model.Fill) model.Position {
	return model.Position{HighestSinceFlat: fill.Price}
}
