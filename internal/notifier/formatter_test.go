package notifier

import (
	"strings"
	"testing"
	"time"

	"SpotSentinel/internal/model"
	"SpotSentinel/internal/trader"
)

func TestFormatStartup(t *testing.T) {
	msg := FormatStartup("SOL/USDT", true, trader.Params{
		CapitalPerCycle: 200,
		DCALevels:       []float64{0.005, 0.015, 0.03},
		DCASplits:       []float64{0.5, 0.3, 0.2},
		TSLProfitMin:    0.0035,
		TSLBack:         0.0015,
		StopLoss:        0.0075,
	})
	for _, want := range []string{"SOL/USDT", "DRY-RUN", "0.50% / 1.50% / 3.00%"} {
		if !strings.Contains(msg, want) {
			t.Errorf("startup message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatTrade_BuyAndSell(t *testing.T) {
	fill := model.Fill{Side: model.SideBuy, Price: 140, Quantity: 1.5, DryRun: true}
	pos := model.Position{Open: true, Stage: 1, AvgEntry: 140, Quantity: 1.5}

	buy := FormatTrade(trader.Decision{Action: trader.ActionBuy, Stage: 0, Reason: trader.ReasonDipEntry}, fill, pos, 0)
	if !strings.Contains(buy, "BUY") || !strings.Contains(buy, "dip_entry") {
		t.Errorf("bad buy message:\n%s", buy)
	}
	if !strings.Contains(buy, "dry-run") {
		t.Errorf("dry-run fill must be labeled:\n%s", buy)
	}

	sell := FormatTrade(trader.Decision{Action: trader.ActionSell, Reason: trader.ReasonStopLoss},
		model.Fill{Side: model.SideSell, Price: 130, Quantity: 1.5}, model.Position{}, -15.2)
	if !strings.Contains(sell, "SELL") || !strings.Contains(sell, "stop_loss") {
		t.Errorf("bad sell message:\n%s", sell)
	}
	if !strings.Contains(sell, "-15.2") {
		t.Errorf("sell message must carry the realized PnL:\n%s", sell)
	}
}

func TestFormatConfig(t *testing.T) {
	msg := FormatConfig("SOL/USDT", trader.Params{
		CapitalPerCycle: 200,
		DCALevels:       []float64{0.005, 0.015, 0.03},
		DCASplits:       []float64{0.5, 0.3, 0.2},
		DipConfirmation: 0.001,
		TSLProfitMin:    0.0035,
		TSLBack:         0.0015,
		StopLoss:        0.0075,
		MinNotional:     5,
		QuoteFraction:   0.98,
	})
	for _, want := range []string{"SOL/USDT", "0.50% / 1.50% / 3.00%", "50.00% / 30.00% / 20.00%", "Min notional: 5.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("config message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatStatus_FlatAndOpen(t *testing.T) {
	flat := FormatStatus(model.Position{HighestSinceFlat: 150}, 149.5, true)
	if !strings.Contains(flat, "Flat") {
		t.Errorf("expected flat status:\n%s", flat)
	}

	open := FormatStatus(model.Position{
		Open: true, Stage: 2, AvgEntry: 140, Quantity: 2, TrailingPeak: 145,
	}, 144, false)
	for _, want := range []string{"stage 2", "140", "145"} {
		if !strings.Contains(open, want) {
			t.Errorf("open status missing %q:\n%s", want, open)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	stats := trader.Stats{
		StartedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Buys:      4, Sells: 2, Wins: 1, Losses: 1, RealizedPnL: 3.75,
	}
	msg := FormatSummary("Daily summary", stats)
	for _, want := range []string{"Daily summary", "Buys: 4", "Sells: 2", "+3.75"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}
