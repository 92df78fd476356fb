// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"serial-discovery/internal/utils"
)

// LoggingMiddleware logs every request once it completes. Requests to
// quietRoutes, such as liveness probes, are only logged when they fail.
func LoggingMiddleware(logger *utils.ServiceLogger, quietRoutes ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(quietRoutes))
	for _, route := range quietRoutes {
		quiet[route] = struct{}{}
	}

	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		route := routeOf(c)
		status := c.Writer.Status()
		if _, ok := quiet[route]; ok && status < 400 {
			return
		}

		logger.LogAPIRequest(
			c.Request.Method,
			route,
			c.Request.UserAgent(),
			c.ClientIP(),
			c.GetString(utils.RequestIDKey),
			status,
			time.Since(startTime),
		)
	}
}

// routeOf prefers the registered route template so run IDs do not
// explode log cardinality
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
