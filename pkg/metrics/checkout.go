package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts order submission outcomes.
type CheckoutMetrics struct {
	placed   prometheus.Counter
	failed   prometheus.Counter
	rejected prometheus.Counter
}

// NewCheckoutMetrics registers checkout counters on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted by the order-placement procedure.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Order submissions that failed at the remote procedure.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Order submissions rejected before any network call.",
	})
	reg.MustRegister(placed, failed, rejected)
	return &CheckoutMetrics{placed: placed, failed: failed, rejected: rejected}
}

// IncPlaced increments the placed counter.
func (c *CheckoutMetrics) IncPlaced() {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
}

// IncFailed increments the failed counter.
func (c *CheckoutMetrics) IncFailed() {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.Inc()
}

// IncRejected increments the pre-submission rejection counter.
func (c *CheckoutMetrics) IncRejected() {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.Inc()
}
