package middleware

import (
	"strconv"
	"time"

	"ghostpass/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request duration per method/route/status. Uses the
// registered route template, not the raw path, to keep label cardinality
// bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
