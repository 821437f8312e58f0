package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/heritage-content/pkg/heritage"
)

// Metrics holds the prometheus collectors for the API. Collectors are
// registered on the registry passed to NewMetrics so tests can use a
// private registry.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	subscriptions *prometheus.CounterVec
}

// NewMetrics creates the API collectors and registers them on registry.
// A nil registry gets a fresh one with the Go and process collectors.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{registry: registry}
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heritage",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "heritage",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	m.subscriptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "heritage",
		Subsystem: "newsletter",
		Name:      "transitions_total",
		Help:      "Newsletter subscribe and unsubscribe outcomes by status",
	}, []string{"status"})

	registry.MustRegister(m.requests, m.duration, m.subscriptions)
	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. The route label is the
// matched chi pattern so ids do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveSubscription counts a newsletter state transition
func (m *Metrics) ObserveSubscription(status heritage.SubscriptionStatus) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(string(status)).Inc()
}
