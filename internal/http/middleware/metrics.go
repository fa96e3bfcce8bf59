// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for the relay endpoint. Metrics
// measures request counts, latencies, in-flight concurrency and response
// sizes with bounded labels:
//
//   - method: HTTP method verb (GET/POST/...)
//   - path:   the registered Gin route (e.g. /api/clients/:id); falls back to
//     the raw URL path when no route matched
//   - status: numeric status code as a string (e.g. "201", "409")
//
// A domain counter, client_requests_received_total, tracks relayed records
// split by replay. All collectors are safe for concurrent use.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// Status is left out to keep the histogram small.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges requests currently inside the handler chain.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// httpRespSize captures response sizes in bytes by method and route path.
	// Buckets stop at 1 MiB: list pages are capped at 100 records.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10, // 200B..5KiB
				10 << 10, 25 << 10, 50 << 10, // 10..50KiB
				100 << 10, 250 << 10, 500 << 10, 1 << 20, // 100KiB..1MiB
			},
		},
		[]string{"method", "path"},
	)

	// clientRequests counts relayed records, split by whether the delivery
	// was a replay of one already stored.
	clientRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_requests_received_total",
			Help: "Product requests received by the relay endpoint.",
		},
		[]string{"replay"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, clientRequests)
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// Semantics:
//   - Increments http_requests_total(method, path, status) per request
//   - Observes http_request_duration_seconds(method, path) on completion
//   - Tracks http_requests_inflight while the rest of the chain runs
//   - Observes http_response_size_bytes(method, path) with bytes written;
//     responses that wrote nothing (size -1) are skipped
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// hijacked or unwritten responses report -1
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

// ObserveClientRequest records one received record. replay is true when the
// record was answered from a stored idempotency entry or an existing row
// instead of a fresh insert.
func ObserveClientRequest(replay bool) {
	clientRequests.WithLabelValues(strconv.FormatBool(replay)).Inc()
}
