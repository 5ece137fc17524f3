package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream Prometheus metrics: calls from the transport to index service hosts.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexflow",
			Name:      "upstream_requests_total",
			Help:      "Total requests to index service hosts",
		},
		[]string{"host", "kind", "outcome"}, // kind: search/write; outcome: ok/retry/error
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indexflow",
			Name:      "upstream_request_duration_seconds",
			Help:      "Index service request duration in seconds, per attempt",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	UpstreamFailoversTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexflow",
			Name:      "upstream_failovers_total",
			Help:      "Requests that moved on to the next host",
		},
		[]string{"host"},
	)
)

var upstreamOnce sync.Once

// RegisterUpstreamMetrics registers the upstream metrics on the default registry.
// Safe to call more than once.
func RegisterUpstreamMetrics() {
	upstreamOnce.Do(func() {
		prometheus.MustRegister(UpstreamRequestsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(UpstreamFailoversTotal)
	})
}
