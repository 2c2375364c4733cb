package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeTransportFailure labels upstream calls that produced no response
const OutcomeTransportFailure = "transport_failure"

// Collectors:
// - relay_http_requests_total: inbound requests by route, method and status
// - relay_http_request_duration_seconds: inbound latency by route and method
// - relay_upstream_requests_total: upstream calls by operation and outcome (status code or transport_failure)
// - relay_upstream_request_duration_seconds: upstream latency by operation
var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_http_requests_total", Help: "Inbound HTTP requests by route, method and status."},
		[]string{"path", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "relay_http_request_duration_seconds", Help: "Inbound HTTP request latency in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"path", "method"},
	)
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "relay_upstream_requests_total", Help: "Upstream calls by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "relay_upstream_request_duration_seconds", Help: "Upstream call latency in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, UpstreamRequests, UpstreamLatency)
}

// Handler returns gin middleware recording inbound request count and latency
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start).Seconds()
		// Unmatched routes share one label to keep cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPLatency.WithLabelValues(path, c.Request.Method).Observe(dur)
		HTTPRequests.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// ObserveUpstream records one upstream call
func ObserveUpstream(operation, outcome string, d time.Duration) {
	UpstreamRequests.WithLabelValues(operation, outcome).Inc()
	UpstreamLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// Exposer returns the standard Prometheus exposition handler
func Exposer() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
