package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edudash/edudash/internal/access"
)

// Metrics collects Prometheus metrics for the dashboard.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	accessDecisions *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edudash_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edudash_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edudash_access_decisions_total",
		Help: "Policy decisions by role, resource kind, action and outcome.",
	}, []string{"role", "kind", "action", "outcome"})
	guards := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edudash_guard_decisions_total",
		Help: "Route guard outcomes by route and decision.",
	}, []string{"route", "decision"})
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edudash_session_transitions_total",
		Help: "Session role transitions by target role.",
	}, []string{"role"})
	registry.MustRegister(requests, duration, decisions, guards, logins)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		accessDecisions: decisions,
		guardDecisions:  guards,
		logins:          logins,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAccess counts one policy decision. It has the access.Observer shape.
func (m *Metrics) ObserveAccess(p access.Principal, kind access.ResourceKind, action access.Action, err error) {
	if m == nil {
		return
	}
	m.accessDecisions.WithLabelValues(p.Role.String(), string(kind), action.String(), Outcome(err)).Inc()
}

// ObserveGuard counts one route guard decision.
func (m *Metrics) ObserveGuard(r *http.Request, decision string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(routePattern(r), decision).Inc()
}

// ObserveRole counts a session transition to role.
func (m *Metrics) ObserveRole(role access.Role) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(role.String()).Inc()
}

// Outcome names the result of a policy decision for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "allowed"
	case errors.Is(err, access.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, access.ErrMisconfiguredRule):
		return "misconfigured"
	default:
		return "forbidden"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
