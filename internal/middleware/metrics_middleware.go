package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratethestore/ratethestore-backend/internal/metrics"
)

// MetricsMiddleware records request counts and latency by route pattern.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		done := m.RequestStarted()
		defer done()

		c.Next()

		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
