package notifier

import (
	"fmt"
	"strings"
	"time"

	"SpotSentinel/internal/model"
	"SpotSentinel/internal/trader"
)

// FormatStartup builds the bot-start announcement.
func FormatStartup(symbol string, dryRun bool, params trader.Params) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🤖 <b>SpotSentinel started</b> | %s\n\n", time.Now().UTC().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Symbol: %s\n", symbol))
	mode := "LIVE"
	if dryRun {
		mode = "DRY-RUN"
	}
	b.WriteString(fmt.Sprintf("Mode: %s\n", mode))
	b.WriteString(fmt.Sprintf("Capital per cycle: %.2f\n", params.CapitalPerCycle))
	b.WriteString(fmt.Sprintf("DCA levels: %s\n", formatFractions(params.DCALevels)))
	b.WriteString(fmt.Sprintf("DCA splits: %s\n", formatFractions(params.DCASplits)))
	b.WriteString(fmt.Sprintf("TP %.2f%% (trail %.2f%%) | SL %.2f%%\n",
		params.TSLProfitMin*100, params.TSLBack*100, params.StopLoss*100))
	return b.String()
}

// FormatTrade builds the per-order notification.
func FormatTrade(decision trader.Decision, fill model.Fill, pos model.Position, pnl float64) string {
	var b strings.Builder
	switch decision.Action {
	case trader.ActionBuy:
		b.WriteString(fmt.Sprintf("🟢 <b>BUY</b> stage %d (%s)\n\n", decision.Stage, decision.Reason))
		b.WriteString(fmt.Sprintf("Fill: %.6f @ %.6f\n", fill.Quantity, fill.Price))
		b.WriteString(fmt.Sprintf("Avg entry: %.6f | Qty: %.6f\n", pos.AvgEntry, pos.Quantity))
	case trader.ActionSell:
		emoji := "🔴"
		if pnl >= 0 {
			emoji = "💰"
		}
		b.WriteString(fmt.Sprintf("%s <b>SELL</b> (%s)\n\n", emoji, decision.Reason))
		b.WriteString(fmt.Sprintf("Fill: %.6f @ %.6f\n", fill.Quantity, fill.Price))
		b.WriteString(fmt.Sprintf("Realized PnL (net of fees): %+.4f\n", pnl))
	}
	if fill.DryRun {
		b.WriteString("\n(simulated order, dry-run)")
	}
	return b.String()
}

// FormatConfig builds the /config reply listing the active thresholds.
func FormatConfig(symbol string, params trader.Params) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Configuration</b>\n\n")
	b.WriteString(fmt.Sprintf("Symbol: %s\n", symbol))
	b.WriteString(fmt.Sprintf("Capital per cycle: %.2f\n", params.CapitalPerCycle))
	b.WriteString(fmt.Sprintf("DCA levels: %s\n", formatFractions(params.DCALevels)))
	b.WriteString(fmt.Sprintf("DCA splits: %s\n", formatFractions(params.DCASplits)))
	b.WriteString(fmt.Sprintf("Dip confirmation: %.2f%%\n", params.DipConfirmation*100))
	b.WriteString(fmt.Sprintf("TP %.2f%% (trail %.2f%%) | SL %.2f%%\n",
		params.TSLProfitMin*100, params.TSLBack*100, params.StopLoss*100))
	b.WriteString(fmt.Sprintf("Min notional: %.2f | Quote fraction: %.2f\n",
		params.MinNotional, params.QuoteFraction))
	return b.String()
}

// FormatStatus builds the /status reply.
func FormatStatus(pos model.Position, lastPrice float64, dryRun bool) string {
	var b strings.Builder
	b.WriteString("📌 <b>Position</b>\n\n")
	b.WriteString(fmt.Sprintf("Last price: %.6f\n", lastPrice))
	if !pos.Open {
		b.WriteString("Flat — no open position\n")
		if pos.HighestSinceFlat > 0 {
			b.WriteString(fmt.Sprintf("Peak since flat: %.6f\n", pos.HighestSinceFlat))
		}
	} else {
		gross := 0.0
		if pos.AvgEntry > 0 {
			gross = (lastPrice - pos.AvgEntry) / pos.AvgEntry * 100
		}
		b.WriteString(fmt.Sprintf("Open | stage %d\n", pos.Stage))
		b.WriteString(fmt.Sprintf("Avg entry: %.6f | Qty: %.6f\n", pos.AvgEntry, pos.Quantity))
		b.WriteString(fmt.Sprintf("Trailing peak: %.6f\n", pos.TrailingPeak))
		b.WriteString(fmt.Sprintf("Unrealized: %+.3f%% (gross)\n", gross))
	}
	if dryRun {
		b.WriteString("\nMode: DRY-RUN")
	}
	return b.String()
}

// FormatSummary builds the session/daily stats report.
func FormatSummary(label string, stats trader.Stats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | since %s\n\n", label, stats.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Buys: %d | Sells: %d\n", stats.Buys, stats.Sells))
	b.WriteString(fmt.Sprintf("Wins: %d | Losses: %d\n", stats.Wins, stats.Losses))
	b.WriteString(fmt.Sprintf("Realized PnL (net): %+.4f\n", stats.RealizedPnL))
	return b.String()
}

// FormatError builds the unrecoverable-tick-error notification.
func FormatError(err error) string {
	return fmt.Sprintf("❌ <b>Tick error</b>\n\n%v", err)
}

func formatFractions(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%.2f%%", v*100)
	}
	return strings.Join(parts, " / ")
}
