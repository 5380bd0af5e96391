package middleware

import (
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// PunchesTotal counts clock punches by type and geofence outcome.
	PunchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeclock_punches_total",
			Help: "Clock punches by type and geofence verdict",
		},
		[]string{"type", "verdict"},
	)
)

func InitMetrics(reg prometheus.Registerer) {
	reg.MustRegister(HttpRequestsTotal, HttpRequestDuration, PunchesTotal)
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

// MetricsHandler serves the Prometheus exposition to allowed client IPs.
// With an empty allow-list only loopback callers get through.
func MetricsHandler(allowed []string) gin.HandlerFunc {
	handler := promhttp.Handler()
	return func(c *gin.Context) {
		if !metricsClientAllowed(c.ClientIP(), allowed) {
			c.AbortWithStatus(403)
			return
		}
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

func metricsClientAllowed(ip string, allowed []string) bool {
	if len(allowed) == 0 {
		parsed := net.ParseIP(ip)
		return parsed != nil && parsed.IsLoopback()
	}
	for _, a := range allowed {
		if a == ip {
			return true
		}
	}
	return false
}
