// internal/middleware/cors_middleware.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"serial-discovery/internal/config"
)

// CORSMiddleware creates CORS middleware for the read-only API. Without
// configured origins every origin is allowed and credentials are off.
func CORSMiddleware(security *config.SecurityConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        security.CORSMaxAge,
		// Browsers upgrade /ws through the same origin check
		AllowWebSockets: true,
	}

	if len(security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = security.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}
