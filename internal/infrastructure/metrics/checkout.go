package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks how checkout sessions move through their states.
type CheckoutMetrics struct {
	transitions *prometheus.CounterVec
	lookups     *prometheus.CounterVec
	emitted     *prometheus.CounterVec
	fulfilment  prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_transitions_total",
		Help: "Checkout session state transitions.",
	}, []string{"from", "to"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_lookup_fallbacks_total",
		Help: "Checkout input lookups that failed and fell back to a default.",
	}, []string{"lookup"})
	emitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_order_lines_total",
		Help: "Order lines processed during fulfilment by outcome.",
	}, []string{"outcome"})
	fulfilment := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_fulfilment_duration_seconds",
		Help:    "Time spent writing orders and pruning the cart.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(transitions, lookups, emitted, fulfilment)
	return &CheckoutMetrics{
		transitions: transitions,
		lookups:     lookups,
		emitted:     emitted,
		fulfilment:  fulfilment,
	}
}

func (m *CheckoutMetrics) ObserveTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *CheckoutMetrics) IncLookupFallback(lookup string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(lookup)).Inc()
}

func (m *CheckoutMetrics) IncOrderLine(outcome string) {
	if m == nil || m.emitted == nil {
		return
	}
	m.emitted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *CheckoutMetrics) ObserveFulfilment(d time.Duration) {
	if m == nil || m.fulfilment == nil {
		return
	}
	m.fulfilment.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
