package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verimetr/verimetr-api/internal/metrics"
)

// Metrics records request counts and latency per route. The route template
// is used instead of the raw path so IDs do not explode the label space.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
