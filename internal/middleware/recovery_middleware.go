// internal/middleware/recovery_middleware.go
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-discovery/internal/utils"
)

// RecoveryMiddleware turns a handler panic into a 500 envelope. The panic
// value is logged but never echoed to the client.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		reqLogger := utils.LoggerWithRequestID(logger, c.GetString(utils.RequestIDKey))
		reqLogger.Error("Panic recovered",
			zap.String("panic", fmt.Sprint(recovered)),
			zap.String("route", routeOf(c)),
			zap.String("method", c.Request.Method),
			zap.Stack("stacktrace"),
		)

		// A websocket upgrade or streamed body has already started.
		if c.Writer.Written() {
			c.Abort()
			return
		}

		utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error", nil)
	})
}
