// Package metrics exposes reconciliation and mutation counters over
// Prometheus. A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultDiscarded = "discarded"
	ResultRejected  = "rejected"
)

// Metrics groups the collectors fridge records.
type Metrics struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	mutations     *prometheus.CounterVec
	notes         prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridge",
			Name:      "fetches_total",
			Help:      "Owned-note fetches by result.",
		}, []string{"result"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fridge",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of owned-note fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridge",
			Name:      "mutations_total",
			Help:      "Submitted note mutations by kind and result.",
		}, []string{"kind", "result"}),
		notes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fridge",
			Name:      "notes",
			Help:      "Notes in the latest successful fetch.",
		}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch records one completed fetch.
func (m *Metrics) ObserveFetch(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(took.Seconds())
}

// SetNotes records the size of the latest note list.
func (m *Metrics) SetNotes(n int) {
	if m == nil {
		return
	}
	m.notes.Set(float64(n))
}

// ObserveMutation records one mutation outcome.
func (m *Metrics) ObserveMutation(kind, result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind, result).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	if m == nil {
		return errors.New("metrics: not enabled")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
