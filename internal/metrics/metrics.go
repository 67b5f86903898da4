package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alecgard/fiveplanner/internal/session"
	"github.com/alecgard/fiveplanner/internal/storage"
)

// Metrics holds all Prometheus metric collectors for the planner.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Session lifecycle metrics.
	SessionsCreatedTotal  prometheus.Counter
	SessionsResolvedTotal *prometheus.CounterVec
	ResponsesTotal        *prometheus.CounterVec

	// Persistence gateway metrics.
	StorageOpsTotal   *prometheus.CounterVec
	StorageOpDuration *prometheus.HistogramVec

	// Auth metrics.
	AuthFailuresTotal  prometheus.Counter
	AuthSuccessesTotal prometheus.Counter

	// Throttling.
	RateLimitedTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveplanner_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiveplanner_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		HTTPResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiveplanner_http_response_size_bytes",
			Help:    "HTTP response size in bytes.",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{"method", "path_pattern"}),

		SessionsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiveplanner_sessions_created_total",
			Help: "Total number of sessions created.",
		}),

		SessionsResolvedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveplanner_sessions_resolved_total",
			Help: "Total number of sessions moved to history, by final status.",
		}, []string{"status"}),

		ResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveplanner_responses_total",
			Help: "Total number of attendance responses recorded, by status.",
		}, []string{"status"}),

		StorageOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiveplanner_storage_ops_total",
			Help: "Total number of persistence gateway operations.",
		}, []string{"op", "key", "result"}),

		StorageOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiveplanner_storage_op_duration_seconds",
			Help:    "Persistence gateway operation duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),

		AuthFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiveplanner_auth_failures_total",
			Help: "Total number of admin authentication failures.",
		}),

		AuthSuccessesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiveplanner_auth_successes_total",
			Help: "Total number of successful admin authentications.",
		}),

		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiveplanner_rate_limited_total",
			Help: "Total number of API requests rejected by the rate limiter.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fiveplanner_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.SessionsCreatedTotal,
		m.SessionsResolvedTotal,
		m.ResponsesTotal,
		m.StorageOpsTotal,
		m.StorageOpDuration,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.RateLimitedTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterPoolCollector registers a collector for the storage connection pool.
func (m *Metrics) RegisterPoolCollector(statFunc PoolStatFunc) {
	m.registry.MustRegister(NewPoolCollector(statFunc))
}

// RegisterStateCollector registers gauges for the current planner contents.
func (m *Metrics) RegisterStateCollector(statFunc StateFunc) {
	m.registry.MustRegister(NewStateCollector(statFunc))
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, pathPattern string, status int, d time.Duration, size int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(d.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, pathPattern).Observe(float64(size))
}

// IncAuthFailure increments the auth failure counter.
func (m *Metrics) IncAuthFailure() {
	m.AuthFailuresTotal.Inc()
}

// IncAuthSuccess increments the auth success counter.
func (m *Metrics) IncAuthSuccess() {
	m.AuthSuccessesTotal.Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) IncRateLimited() {
	m.RateLimitedTotal.Inc()
}

// SessionCreated implements session.Observer.
func (m *Metrics) SessionCreated(session.Session) {
	m.SessionsCreatedTotal.Inc()
}

// SessionResolved implements session.Observer.
func (m *Metrics) SessionResolved(s session.Session) {
	m.SessionsResolvedTotal.WithLabelValues(string(s.Status)).Inc()
}

// ResponseRecorded implements session.Observer.
func (m *Metrics) ResponseRecorded(_ session.Session, status session.ResponseStatus) {
	m.ResponsesTotal.WithLabelValues(string(status)).Inc()
}

// ObserveStorageOp implements storage.Observer.
func (m *Metrics) ObserveStorageOp(op, key string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StorageOpsTotal.WithLabelValues(op, key, result).Inc()
	m.StorageOpDuration.WithLabelValues(op).Observe(d.Seconds())
}

var (
	_ session.Observer = (*Metrics)(nil)
	_ storage.Observer = (*Metrics)(nil)
)
