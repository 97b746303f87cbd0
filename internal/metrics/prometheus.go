package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RentalsRequested prometheus.Counter
	Transitions      *prometheus.CounterVec
	ErrorsCount      *prometheus.CounterVec
	PendingPayouts   prometheus.Gauge
	RequestDuration  *prometheus.HistogramVec
}

// NewMetrics creates the rental metrics on the given registerer. Passing a fresh
// prometheus.NewRegistry() keeps tests independent of the global registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RentalsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_requested_total",
			Help:      "The total number of rental requests accepted",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rental_transitions_total",
			Help:      "The total number of rental lifecycle transitions, by target status",
		}, []string{"to"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		PendingPayouts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_payouts",
			Help:      "Completed rentals whose owner payout is still outstanding",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}
