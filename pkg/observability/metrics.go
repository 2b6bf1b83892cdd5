package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "vortex_bridge"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Session metrics
	LoginsTotal *prometheus.CounterVec

	// Assertion metrics
	AssertionsTotal *prometheus.CounterVec

	// Upstream metrics
	UpstreamCallsTotal   *prometheus.CounterVec
	UpstreamCallDuration *prometheus.HistogramVec
	AcceptOutcomesTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "logins_total",
				Help:      "Login attempts by result",
			},
			[]string{"result"},
		),
		AssertionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "assertions_total",
				Help:      "Identity assertions issued by result",
			},
			[]string{"result"},
		),
		UpstreamCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_calls_total",
				Help:      "Calls to the Vortex API by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_call_duration_seconds",
				Help:      "Vortex API call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		AcceptOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invitation_accept_outcomes_total",
				Help:      "Per-invitation accept outcomes",
			},
			[]string{"status"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.AssertionsTotal,
		m.UpstreamCallsTotal,
		m.UpstreamCallDuration,
		m.AcceptOutcomesTotal,
	)

	return m
}

// RegisterSessionGauge exposes the number of live sessions through count
func (m *Metrics) RegisterSessionGauge(count func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_active",
			Help:      "Number of sessions held in memory",
		},
		count,
	))
}

// ObserveUpstream records one Vortex API call
func (m *Metrics) ObserveUpstream(operation string, statusCode int, duration time.Duration, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case statusCode == http.StatusNotFound:
		outcome = "not_found"
	case statusCode == 0:
		outcome = "transport_error"
	default:
		outcome = "error"
	}

	m.UpstreamCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.UpstreamCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel returns the matched mux template so ids don't explode cardinality
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware records request counts and latency per route template
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint serves the registry on /metrics
func RegisterMetricsEndpoint(serveMux *http.ServeMux, registry *prometheus.Registry) {
	serveMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
