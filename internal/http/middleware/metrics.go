package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/observability"
)

// Metrics records request counts and latency per matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		observability.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
