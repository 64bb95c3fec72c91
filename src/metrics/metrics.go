// Package metrics exposes the Prometheus series the trading processes update
// during operation:
//   - bot_reconcile_passes_total          – reconciliation passes completed
//   - bot_stops_placed_total{side}        – SL-M orders placed to fill gaps
//   - bot_orphans_cancelled_total         – orphan stop orders cancelled
//   - bot_signals_total{side}             – screener signals received
//   - bot_super_orders_total{side}        – super orders placed
//   - bot_broker_errors_total{op}         – broker calls that failed
//   - bot_open_positions                  – open intraday positions last seen
//
// Registered in init() and served by the status router at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReconcilePasses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_reconcile_passes_total",
			Help: "Reconciliation passes completed",
		},
	)

	StopsPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_stops_placed_total",
			Help: "Stop-loss orders placed",
		},
		[]string{"side"},
	)

	OrphansCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_orphans_cancelled_total",
			Help: "Orphan stop orders cancelled",
		},
	)

	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_signals_total",
			Help: "Screener signals received",
		},
		[]string{"side"},
	)

	SuperOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_super_orders_total",
			Help: "Super orders placed",
		},
		[]string{"side"},
	)

	BrokerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_broker_errors_total",
			Help: "Broker calls that failed",
		},
		[]string{"op"},
	)

	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_open_positions",
			Help: "Open intraday positions last seen",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ReconcilePasses,
		StopsPlaced,
		OrphansCancelled,
		Signals,
		SuperOrders,
		BrokerErrors,
		OpenPositions,
	)
}
