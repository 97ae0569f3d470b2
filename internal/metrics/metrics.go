// Package metrics provides Prometheus metrics for the position-sizing
// service: calculation and validation activity, advisory adapter
// outcomes, persistence failures, and live client connections.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Calculator metrics
	CalculationsTotal  prometheus.Counter // Successful position size calculations
	ValidationFailures prometheus.Counter // Parameter sets rejected by the validation gate
	CalculationErrors  prometheus.Counter // Non-finite or degenerate calculation results

	// Advisory adapter metrics
	SuggestionRequests        prometheus.Counter   // Advisory requests issued
	SuggestionFallbacks       prometheus.Counter   // Responses repaired with conservative defaults
	SuggestionTransportErrors prometheus.Counter   // Transport or non-success status failures
	SuggestionLatency         prometheus.Histogram // Advisory round-trip latency in seconds

	// Persistence metrics
	PersistErrors prometheus.Counter // Durable writes that failed and were absorbed

	// Live update metrics
	WSClients prometheus.Gauge // Currently connected parameter-stream clients
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// testing without touching the global registry).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		CalculationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "calculations_total",
			Help: "Total number of successful position size calculations",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of parameter sets rejected by validation",
		}),
		CalculationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Total number of calculations that produced unusable results",
		}),
		SuggestionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "suggestion_requests_total",
			Help: "Total number of advisory suggestion requests issued",
		}),
		SuggestionFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "suggestion_fallbacks_total",
			Help: "Total number of advisory responses repaired with defaults",
		}),
		SuggestionTransportErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "suggestion_transport_errors_total",
			Help: "Total number of advisory transport failures",
		}),
		SuggestionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "suggestion_latency_seconds",
			Help:    "Advisory request round-trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PersistErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "persist_errors_total",
			Help: "Total number of absorbed durable-write failures",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Number of connected parameter-stream clients",
		}),
	}
}

// Increment helpers satisfying the tracker interfaces the core packages
// accept, so they never import prometheus directly.

func (m *Metrics) PersistErrorsInc() { m.PersistErrors.Inc() }

func (m *Metrics) SuggestionRequestsInc() { m.SuggestionRequests.Inc() }

func (m *Metrics) SuggestionFallbacksInc() { m.SuggestionFallbacks.Inc() }

func (m *Metrics) SuggestionTransportErrorsInc() { m.SuggestionTransportErrors.Inc() }
