package middleware

import (
	"time"

	"github.com/machelox/Proyecto-Cyberia/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records count and latency per matched route. Unmatched paths are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
