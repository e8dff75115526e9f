// Package obsmetrics exposes the bus's optional Prometheus metrics: a
// subscriber-count gauge and publish/dispatch-skip counters, each
// labeled by event type. Wiring a Collector into a Bus is opt-in via
// eventbus.WithMetrics; a Bus with no Collector pays nothing beyond a
// nil check per call.
package obsmetrics

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is a set of Prometheus metrics describing one Bus
// instance's subscriber and delivery activity. It is safe for
// concurrent use, matching prometheus.Collector's own requirement.
type Collector struct {
	subscribers     *prometheus.GaugeVec
	publishTotal    *prometheus.CounterVec
	dispatchSkipped *prometheus.CounterVec
}

// New constructs a Collector. busID distinguishes metrics from
// multiple Bus instances registered against the same
// prometheus.Registerer in one process.
func New(busID string) *Collector {
	constLabels := prometheus.Labels{"bus": busID}
	return &Collector{
		subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "eventbus",
			Name:        "subscribers",
			Help:        "Current number of handlers subscribed per event type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "eventbus",
			Name:        "publish_total",
			Help:        "Total number of values published per event type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		dispatchSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "eventbus",
			Name:        "dispatch_skipped_total",
			Help:        "Total number of handler records skipped during delivery due to a dynamic-dispatch type mismatch.",
			ConstLabels: constLabels,
		}, []string{"type"}),
	}
}

// MustRegister registers every metric the Collector owns against r,
// panicking if registration fails. A failure here means two Collectors
// were registered against the same Registerer with colliding metric
// names, which is a wiring mistake to fix at startup, not a condition
// a running bus can recover from.
func (c *Collector) MustRegister(r prometheus.Registerer) {
	r.MustRegister(c.subscribers, c.publishTotal, c.dispatchSkipped)
}

// ObserveSubscribe increments the subscriber gauge for typ.
func (c *Collector) ObserveSubscribe(typ reflect.Type) {
	c.subscribers.WithLabelValues(typ.String()).Inc()
}

// ObserveUnsubscribe decrements the subscriber gauge for typ.
func (c *Collector) ObserveUnsubscribe(typ reflect.Type) {
	c.subscribers.WithLabelValues(typ.String()).Dec()
}

// ObservePublish increments the publish counter for typ.
func (c *Collector) ObservePublish(typ reflect.Type) {
	c.publishTotal.WithLabelValues(typ.String()).Inc()
}

// ObserveDispatchSkipped increments the dispatch-skip counter for typ.
func (c *Collector) ObserveDispatchSkipped(typ reflect.Type) {
	c.dispatchSkipped.WithLabelValues(typ.String()).Inc()
}
