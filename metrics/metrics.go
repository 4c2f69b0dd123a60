// Package metrics collects and exposes Prometheus metrics for the HTTP
// and messaging surfaces.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  prometheus.Histogram
	messages     *prometheus.CounterVec
	faults       *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userservice_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "userservice_http_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userservice_messages_total",
			Help: "Peer messages handled by pattern",
		}, []string{"pattern"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userservice_message_faults_total",
			Help: "Peer message faults by pattern and status",
		}, []string{"pattern", "status"}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.messages,
		c.faults,
	)

	return c
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordMessage records one handled peer message.
func (c *Collector) RecordMessage(pattern string) {
	c.messages.WithLabelValues(pattern).Inc()
}

// RecordFault records a fault reply on the peer surface.
func (c *Collector) RecordFault(pattern string, status int) {
	c.faults.WithLabelValues(pattern, strconv.Itoa(status)).Inc()
}

// Middleware records request metrics for every route it wraps.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		c.RecordHTTPRequest(ctx.Request.Method, ctx.Writer.Status(), time.Since(start))
	}
}

// Handler returns the /metrics endpoint handler for this registry.
func (c *Collector) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
