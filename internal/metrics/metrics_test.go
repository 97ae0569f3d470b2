package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.CalculationsTotal.Inc()
	m.ValidationFailures.Inc()
	m.ValidationFailures.Inc()
	m.WSClients.Set(3)

	if got := testutil.ToFloat64(m.CalculationsTotal); got != 1 {
		t.Errorf("expected calculations_total 1, got %f", got)
	}
	if got := testutil.ToFloat64(m.ValidationFailures); got != 2 {
		t.Errorf("expected validation_failures_total 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.WSClients); got != 3 {
		t.Errorf("expected ws_clients 3, got %f", got)
	}
}

func TestTrackerHooks(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.PersistErrorsInc()
	m.SuggestionRequestsInc()
	m.SuggestionFallbacksInc()
	m.SuggestionTransportErrorsInc()

	if got := testutil.ToFloat64(m.PersistErrors); got != 1 {
		t.Errorf("expected persist_errors_total 1, got %f", got)
	}
	if got := testutil.ToFloat64(m.SuggestionRequests); got != 1 {
		t.Errorf("expected suggestion_requests_total 1, got %f", got)
	}
}
