package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scand"

// Registry bundles the instruments updated by the device service and
// the serving layers.
type Registry struct {
	registry *prometheus.Registry

	OpensTotal    *prometheus.CounterVec
	ReleasesTotal *prometheus.CounterVec
	ReadsTotal    *prometheus.CounterVec
	WritesTotal   *prometheus.CounterVec
	ControlsTotal *prometheus.CounterVec

	TokensTotal      prometheus.Counter
	TruncationsTotal prometheus.Counter

	SessionsActive prometheus.Gauge
	BufferBytes    prometheus.Gauge

	TokenBytes prometheus.Histogram
}

// NewRegistry creates a Registry backed by a fresh Prometheus registry
// with the standard Go runtime and process collectors attached.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		OpensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opens_total",
			Help:      "Device open operations by status.",
		}, []string{"status"}),
		ReleasesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Device release operations by status.",
		}, []string{"status"}),
		ReadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Device read operations by status.",
		}, []string{"status"}),
		WritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Device write operations by status.",
		}, []string{"status"}),
		ControlsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "controls_total",
			Help:      "Device control operations by status.",
		}, []string{"status"}),

		TokensTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens returned by read operations.",
		}),
		TruncationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncations_total",
			Help:      "Reads whose token was cut to the caller's capacity.",
		}),

		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Currently open device sessions.",
		}),
		BufferBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_bytes",
			Help:      "Size of the shared device buffer.",
		}),

		TokenBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "token_bytes",
			Help:      "Distribution of returned token sizes.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

// Statuses used as the status label on operation counters.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Handler returns an http.Handler serving the Prometheus exposition.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
