package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests that no gateway route matched.
const unmatchedRoute = "unmatched"

var (
	httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexflow",
		Subsystem: "gateway",
		Name:      "requests_in_flight",
		Help:      "Gateway requests currently being served.",
	})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexflow",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Gateway request latency by route. Task waits can take seconds.",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"code", "method", "route"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexflow",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Gateway requests by route and status code.",
	}, []string{"code", "method", "route"})
)

var httpOnce sync.Once

// RegisterHTTPMetrics registers the gateway request metrics on the default
// registry. Safe to call more than once.
func RegisterHTTPMetrics() {
	httpOnce.Do(func() {
		prometheus.MustRegister(httpRequestsInFlight, httpRequestDuration, httpRequestsTotal)
	})
}

// Middleware instruments the gateway. Requests are labelled with the chi route
// pattern, so index names and task IDs never become label values.
func Middleware() func(next http.Handler) http.Handler {
	byRoute := promhttp.WithLabelFromCtx("route", routeLabel)
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerInFlight(httpRequestsInFlight,
			promhttp.InstrumentHandlerDuration(httpRequestDuration,
				promhttp.InstrumentHandlerCounter(httpRequestsTotal, next, byRoute),
				byRoute,
			),
		)
	}
}

// routeLabel reads the matched pattern; chi fills it in while routing, before
// the instrumentation reads labels.
func routeLabel(ctx context.Context) string {
	rc := chi.RouteContext(ctx)
	if rc == nil {
		return unmatchedRoute
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
