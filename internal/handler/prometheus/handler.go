package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/ehr-api/pkg/metrics"
)

type Handler struct {
	metrics *metrics.Metrics
}

func New(m *metrics.Metrics) *Handler {
	return &Handler{metrics: m}
}

// Middleware records request count, latency and errors per route
// template, so /patients/:id/ is one series regardless of id.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		h.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		h.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			errType := "client"
			if c.Writer.Status() >= 500 {
				errType = "server"
			}
			h.metrics.ErrorTotal.WithLabelValues(c.Request.Method, path, errType).Inc()
		}
	}
}

// Handler serves the Prometheus exposition format
func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{}))
}
