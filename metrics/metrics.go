// Package metrics exposes prometheus collectors for the quote lifecycle and
// the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuotesCreated counts stored quotes by flow (in_person, remote).
	QuotesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "climaquote_quotes_created_total",
		Help: "Total number of quotes stored by flow",
	}, []string{"flow"})

	// RemoteSignatures counts remote finalize attempts by result (signed, rejected, error).
	RemoteSignatures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "climaquote_remote_signatures_total",
		Help: "Total number of remote signature attempts by result",
	}, []string{"result"})

	// Notifications counts quote emails by result (sent, failed).
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "climaquote_notifications_total",
		Help: "Total number of quote emails by result",
	}, []string{"result"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "climaquote_render_duration_seconds",
		Help:    "Time taken to render a quote document",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	// Extractions counts AI extraction requests by result (ok, error).
	Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "climaquote_extractions_total",
		Help: "Total number of product extraction requests by result",
	}, []string{"result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "climaquote_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func NotificationResult(sent bool) string {
	if sent {
		return "sent"
	}
	return "failed"
}

// Middleware records request latency keyed by the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
