package service

import (
	"errors"
	"time"

	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thermo_queries_total",
				Help: "Number of queries answered, by mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thermo_query_duration_seconds",
				Help:    "Time spent answering queries and sweeps.",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
			[]string{"kind"},
		),
	}
}

func (m *metrics) observe(kind, modeName string, err error, elapsed time.Duration) {
	m.queries.WithLabelValues(modeLabel(modeName), outcome(err)).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// modeLabel keeps label cardinality bounded by collapsing names that are
// not modes.
func modeLabel(name string) string {
	m, err := mode.Lookup(name)
	if err != nil {
		return "unknown"
	}
	return m.Name
}

func outcome(err error) string {
	var ze *srverr.Error
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ze) && ze.Kind == srverr.Invalid:
		return "invalid"
	case errors.As(err, &ze) && ze.Kind == srverr.NotFound:
		return "not_found"
	}
	return "error"
}
