package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the POS counters exported on /metrics.
type Metrics struct {
	SalesPosted          prometheus.Counter
	SalesRevenue         prometheus.Counter
	SaleRejections       *prometheus.CounterVec
	StockAdjustments     *prometheus.CounterVec
	StockClamps          prometheus.Counter
	ReconciliationsOpen  prometheus.Counter
	StockMovementsPosted *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SalesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sales_posted_total",
			Help:      "Sales persisted successfully.",
		}),
		SalesRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sales_revenue_total",
			Help:      "Gross revenue of persisted sales.",
		}),
		SaleRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sale_rejections_total",
			Help:      "Carts rejected by validation, by rule.",
		}, []string{"rule"}),
		StockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "stock_adjustments_total",
			Help:      "Stock adjustments by source and outcome.",
		}, []string{"source", "outcome"}),
		StockClamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "stock_clamps_total",
			Help:      "Adjustments that left negative stock and were clamped to zero.",
		}),
		ReconciliationsOpen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "stock_reconciliations_recorded_total",
			Help:      "Failed adjustments written to the reconciliation table.",
		}),
		StockMovementsPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "stock_movements_total",
			Help:      "Manual stock movements recorded, by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.SalesPosted,
		m.SalesRevenue,
		m.SaleRejections,
		m.StockAdjustments,
		m.StockClamps,
		m.ReconciliationsOpen,
		m.StockMovementsPosted,
	)
	return m
}

// NewNoop returns counters bound to a private registry, for tests and tools.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}
