package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "campusloop"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route. Websocket upgrades are not observed.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests being served.",
	})

	dbOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "db",
		Name:      "open_connections",
		Help:      "Open connections in the database pool.",
	})
)

// probe endpoints are not counted
var unmeteredRoutes = map[string]bool{
	"/metrics": true,
	"/health":  true,
}

// Metrics records request count, latency and in-flight requests per route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if unmeteredRoutes[route] {
			c.Next()
			return
		}
		if route == "" {
			// 라벨 폭증 방지
			route = "unmatched"
		}

		start := time.Now()
		websocket := c.IsWebsocket()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if !websocket {
			httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		}
	}
}

// SetDBConnectionsOpen updates the pool gauge
func SetDBConnectionsOpen(count int) {
	dbOpenConnections.Set(float64(count))
}
