package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch(ResultSuccess, time.Millisecond)
	m.ObserveMutation("create", ResultError)
	m.SetNotes(3)
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveFetch(ResultSuccess, time.Millisecond)
	m.ObserveFetch(ResultSuccess, time.Millisecond)
	m.ObserveFetch(ResultError, time.Millisecond)
	m.ObserveMutation("update", ResultSuccess)
	m.SetNotes(4)

	if got := testutil.ToFloat64(m.fetches.WithLabelValues(ResultSuccess)); got != 2 {
		t.Fatalf("expected 2 successful fetches, got %v", got)
	}
	if got := testutil.ToFloat64(m.mutations.WithLabelValues("update", ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 update, got %v", got)
	}
	if got := testutil.ToFloat64(m.notes); got != 4 {
		t.Fatalf("expected 4 notes, got %v", got)
	}
}
