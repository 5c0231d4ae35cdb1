package observability

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec

	SessionCacheHitsTotal   prometheus.Counter
	SessionCacheMissesTotal prometheus.Counter
	SessionsSweptTotal      prometheus.Counter
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_http_requests_total",
				Help: "Total number of dashboard HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_request_duration_seconds",
				Help:    "Dashboard HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_backend_requests_total",
				Help: "Total number of requests sent to the studio backend",
			},
			[]string{"method", "endpoint", "status"},
		),
		BackendRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_backend_request_duration_seconds",
				Help:    "Studio backend request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		SessionCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_session_cache_hits_total",
			Help: "Session lookups served from memory",
		}),
		SessionCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_session_cache_misses_total",
			Help: "Session lookups that went to the database",
		}),
		SessionsSweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_sessions_swept_total",
			Help: "Expired sessions removed by the sweeper",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.SessionCacheHitsTotal,
		m.SessionCacheMissesTotal,
		m.SessionsSweptTotal,
	)

	return m
}

// RecordBackendRequest records one upstream call. status is 0 when the request never got a response.
func (m *Metrics) RecordBackendRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.BackendRequestsTotal.WithLabelValues(method, endpoint, label).Inc()
	m.BackendRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Middleware records every dashboard request by its route template.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Response().Status)
		m.HTTPRequestsTotal.WithLabelValues(c.Request().Method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
