package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/handler"
	"github.com/RonaldAllanRivera/ride-info/internal/middleware"
	"github.com/RonaldAllanRivera/ride-info/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler      *handler.UserHandler
	RideHandler      *handler.RideHandler
	RideEventHandler *handler.RideEventHandler
	AuthHandler      *handler.AuthHandler
	HealthHandler    *handler.HealthHandler

	Issuer     *auth.TokenIssuer
	Principals middleware.PrincipalLoader
	// Responses is nil when Redis is disabled.
	Responses redis.ResponseStore

	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
	NewRelicApp *newrelic.Application
	Debug       bool
}

type resourceHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Patch(c *gin.Context)
	Delete(c *gin.Context)
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Handler())
	}
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}
	router.Use(middleware.QueryCount(deps.Debug))

	// Open endpoints.
	router.GET("/health", deps.HealthHandler.Live)
	router.GET("/health/ready", deps.HealthHandler.Ready)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	router.POST("/auth/token", deps.AuthHandler.Login)

	// Admin API.
	admin := router.Group("")
	admin.Use(middleware.Authenticate(deps.Issuer, deps.Principals))
	admin.Use(middleware.RequireAdmin())
	admin.Use(middleware.Idempotency(deps.Responses))

	registerResource(admin.Group("/users"), deps.UserHandler)
	registerResource(admin.Group("/rides"), deps.RideHandler)
	registerResource(admin.Group("/ride-events"), deps.RideEventHandler)

	return router
}

func registerResource(g *gin.RouterGroup, h resourceHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}
