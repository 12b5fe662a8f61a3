// Package metrics holds the prometheus collectors for golinks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "golinks"

// Result label values
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics groups the collectors updated by the resolver, the click
// recorder and the management operations
type Metrics struct {
	Redirects      *prometheus.CounterVec
	ClicksRecorded prometheus.Counter
	ClickFailures  prometheus.Counter
	ClicksDropped  prometheus.Counter
	ClickQueue     prometheus.Gauge
	Mutations      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors, which is what the CLI uses.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Redirects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Shortcut resolutions by result (hit or miss).",
		}, []string{"result"}),
		ClicksRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_recorded_total",
			Help:      "Click increments persisted to the store.",
		}),
		ClickFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "click_failures_total",
			Help:      "Click increments that failed to persist.",
		}),
		ClicksDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_dropped_total",
			Help:      "Click increments dropped because the queue was full or closed.",
		}),
		ClickQueue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "click_queue_length",
			Help:      "Click increments waiting to be persisted.",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_mutations_total",
			Help:      "Management operations by operation and result.",
		}, []string{"op", "result"}),
	}
}

// ObserveRedirect counts a resolution
func (m *Metrics) ObserveRedirect(found bool) {
	if found {
		m.Redirects.WithLabelValues(ResultHit).Inc()
		return
	}
	m.Redirects.WithLabelValues(ResultMiss).Inc()
}

// ObserveMutation counts a management operation
func (m *Metrics) ObserveMutation(op string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.Mutations.WithLabelValues(op, result).Inc()
}
