// Package metrics implements the Metrics port with Prometheus collectors
// written to a textfile after each command.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// Recorder implements ports.Metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	lookupsTotal      *prometheus.CounterVec
	lookupErrorsTotal *prometheus.CounterVec
	fetchesTotal      *prometheus.CounterVec
	operationsTotal   *prometheus.CounterVec
	eventsTotal       *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lockmap_provider_lookups_total",
				Help: "Number of latest-version lookups by provider.",
			},
			[]string{"provider"},
		),
		lookupErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lockmap_provider_lookup_errors_total",
				Help: "Number of failed latest-version lookups by provider and error kind.",
			},
			[]string{"provider", "kind"},
		),
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lockmap_fetches_total",
				Help: "Number of fetched resources by source.",
			},
			[]string{"source"},
		),
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lockmap_operations_total",
				Help: "Number of operations by name and result.",
			},
			[]string{"operation", "result"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lockmap_install_events_total",
				Help: "Number of installer events by kind.",
			},
			[]string{"kind"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lockmap_operation_duration_seconds",
				Help:    "Time taken by an operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	r.registry.MustRegister(
		r.lookupsTotal,
		r.lookupErrorsTotal,
		r.fetchesTotal,
		r.operationsTotal,
		r.eventsTotal,
		r.operationDuration,
	)
	return r
}

// ObserveLookup counts one latest-version lookup.
func (r *Recorder) ObserveLookup(provider string, err error) {
	r.lookupsTotal.WithLabelValues(provider).Inc()
	if err != nil {
		r.lookupErrorsTotal.WithLabelValues(provider, domain.KindOf(err).String()).Inc()
	}
}

// ObserveFetch counts one fetch.
func (r *Recorder) ObserveFetch(cached bool) {
	source := "origin"
	if cached {
		source = "cache"
	}
	r.fetchesTotal.WithLabelValues(source).Inc()
}

// ObserveOperation records the outcome of a command and its installer events.
func (r *Recorder) ObserveOperation(operation string, elapsed time.Duration, report *domain.Report, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.operationsTotal.WithLabelValues(operation, result).Inc()
	r.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	if report == nil {
		return
	}
	for _, e := range report.Events {
		r.eventsTotal.WithLabelValues(string(e.Kind)).Inc()
	}
}

// WriteFile writes the registry in text exposition format. The file is
// written to a temporary name and renamed into place.
func (r *Recorder) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	return nil
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
