package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared across the application.
type Metrics struct {
	LoadCycles    prometheus.Counter
	LoadDuration  prometheus.Histogram
	RowsParsed    prometheus.Counter
	RowsSkipped   prometheus.Counter
	RowsExcluded  prometheus.Counter
	SourcesFailed prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// NewMetrics registers and returns the application collectors on the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests use a
// fresh registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoadCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "callpulse_load_cycles_total",
			Help: "Number of data directory load cycles performed.",
		}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "callpulse_load_duration_seconds",
			Help:    "Duration of data directory load cycles.",
			Buckets: prometheus.DefBuckets,
		}),
		RowsParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "callpulse_rows_parsed_total",
			Help: "Number of rows successfully normalized.",
		}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "callpulse_rows_skipped_total",
			Help: "Number of malformed rows skipped during parsing.",
		}),
		RowsExcluded: factory.NewCounter(prometheus.CounterOpts{
			Name: "callpulse_rows_excluded_total",
			Help: "Number of rows removed by the test-fixture denylist.",
		}),
		SourcesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "callpulse_sources_failed_total",
			Help: "Number of source files that could not be parsed at all.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callpulse_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "callpulse_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
