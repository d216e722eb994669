// Package metrics exposes Prometheus instrumentation for the trading loop,
// served at /metrics in the text exposition format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ticks_total",
			Help: "Price ticks processed",
		},
	)

	TickErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_tick_errors_total",
			Help: "Ticks abandoned because of remote failures or panics",
		},
	)

	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Decisions taken per tick",
		},
		[]string{"action"},
	)

	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders placed",
		},
		[]string{"mode", "side"},
	)

	ExitReasonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_exit_reasons_total",
			Help: "Exits split by reason",
		},
		[]string{"reason"},
	)

	LastPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_last_price",
			Help: "Most recent observed price",
		},
	)

	PositionQuantity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_position_quantity",
			Help: "Base quantity held by the open position",
		},
	)

	AvgEntryPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_average_entry_price",
			Help: "Volume-weighted entry price of the open position (0 when flat)",
		},
	)

	CooldownSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_cooldown_seconds",
			Help: "Current dynamic loop cooldown",
		},
	)

	RealizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_realized_pnl",
			Help: "Session realized PnL net of fees, in quote units",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		TickErrorsTotal,
		DecisionsTotal,
		OrdersTotal,
		ExitReasonsTotal,
		LastPrice,
		PositionQuantity,
		AvgEntryPrice,
		CooldownSeconds,
		RealizedPnL,
	)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
