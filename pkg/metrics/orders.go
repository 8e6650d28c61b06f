package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts order lifecycle events.
type OrderMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	checkouts   *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders created, one per product line.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_transitions_total",
		Help: "Order status transitions applied.",
	}, []string{"from", "to"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(created, transitions, checkouts)
	return &OrderMetrics{created: created, transitions: transitions, checkouts: checkouts}
}

// OrdersCreated adds n newly placed orders.
func (m *OrderMetrics) OrdersCreated(n int) {
	if m == nil || m.created == nil || n <= 0 {
		return
	}
	m.created.Add(float64(n))
}

// Transition records a status change.
func (m *OrderMetrics) Transition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// Checkout records a checkout attempt; outcome is "success" or an error code.
func (m *OrderMetrics) Checkout(outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}
