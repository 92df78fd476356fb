// internal/routes/routes.go
package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"serial-discovery/internal/config"
	"serial-discovery/internal/handler"
	"serial-discovery/internal/middleware"
	"serial-discovery/internal/service"
	"serial-discovery/internal/utils"
)

// quietRoutes are polled by orchestrators and only logged on failure
var quietRoutes = []string{"/health", "/ready", "/live"}

// Router holds all dependencies for routing
type Router struct {
	config           *config.Config
	logger           *zap.Logger
	db               handler.DatabaseChecker
	eventBus         *handler.EventBus
	discoveryService *service.DiscoveryService
}

// NewRouter creates a new router instance. db is nil when the history
// database is disabled.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	db handler.DatabaseChecker,
	eventBus *handler.EventBus,
	discoveryService *service.DiscoveryService,
) *Router {
	return &Router{
		config:           config,
		logger:           logger,
		db:               db,
		eventBus:         eventBus,
		discoveryService: discoveryService,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if r.config.App.Environment == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	r.addMiddleware(router)
	r.addRoutes(router)
	r.addFallbacks(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger, quietRoutes...))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	wsHandler := handler.NewWebSocketHandler(r.eventBus, r.config.Security.AllowedOrigins, r.logger)
	healthHandler := handler.NewHealthHandler(r.db, r.discoveryService.GetAvailableScanners, r.config, r.logger).
		WithConnectionStats(wsHandler.GetConnectionStats)
	discoveryHandler := handler.NewDiscoveryHandler(r.discoveryService, r.logger)

	healthHandler.RegisterRoutes(router.Group(""))

	apiV1 := router.Group("/api/v1")
	discoveryHandler.RegisterRoutes(apiV1.Group("/discovery"))

	wsHandler.RegisterRoutes(router.Group("/ws"))

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addFallbacks answers unknown routes with the standard error envelope
func (r *Router) addFallbacks(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "Route not found", fmt.Errorf("%s %s", c.Request.Method, c.Request.URL.Path))
	})
	router.NoMethod(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusMethodNotAllowed, "Method not allowed", fmt.Errorf("%s %s", c.Request.Method, c.Request.URL.Path))
	})
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
