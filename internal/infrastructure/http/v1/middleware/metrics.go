package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/infrastructure/metrics"
)

// Metrics records request count, latency and in-flight requests. Unmatched
// routes are grouped under one label to keep cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
