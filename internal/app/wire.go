package app

import (
	"context"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/config"
	"github.com/RonaldAllanRivera/ride-info/internal/handler"
	"github.com/RonaldAllanRivera/ride-info/internal/logger"
	"github.com/RonaldAllanRivera/ride-info/internal/middleware"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/redis"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

// Repositories is the persistence backend the API runs on.
type Repositories struct {
	Users  repository.UserRepository
	Rides  repository.RideRepository
	Events repository.RideEventRepository
	// Ping reports store health; nil for the in-process store.
	Ping handler.Pinger
}

// Deps are the process-level collaborators of the HTTP server.
type Deps struct {
	Repos Repositories
	// Redis is nil when Redis is disabled.
	Redis       *goredis.Client
	NewRelicApp *newrelic.Application
	// Registry receives the HTTP collectors; nil disables /metrics.
	Registry *prometheus.Registry
	// Clock overrides time.Now for services.
	Clock func() time.Time
}

// NewHandler wires services and handlers and returns the HTTP handler.
func NewHandler(cfg *config.Config, deps Deps) http.Handler {
	// Interfaces stay untyped nil when Redis is off.
	var (
		userCache redis.UserCache
		responses redis.ResponseStore
		redisPing handler.Pinger
	)
	if deps.Redis != nil {
		userCache = redis.NewCacheStore(deps.Redis)
		responses = redis.NewIdempotencyStore(deps.Redis)
		client := deps.Redis
		redisPing = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}

	log := logger.L()
	paginator := pagination.Paginator{
		DefaultSize: cfg.Pagination.PageSize,
		MaxSize:     cfg.Pagination.MaxPageSize,
	}
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	userService := service.NewUserService(deps.Repos.Users, userCache, log)
	rideService := service.NewRideService(deps.Repos.Rides, deps.Repos.Events, deps.Clock)
	eventService := service.NewRideEventService(deps.Repos.Events, deps.Clock)
	authService := service.NewAuthService(deps.Repos.Users, issuer)
	principals := service.NewPrincipalService(deps.Repos.Users, userCache, log)

	var metrics *middleware.Metrics
	var gatherer prometheus.Gatherer
	if deps.Registry != nil {
		metrics = middleware.NewMetrics(deps.Registry)
		gatherer = deps.Registry
	}

	logger.Info("Router wired",
		zap.Bool("redis", deps.Redis != nil),
		zap.Bool("new_relic", deps.NewRelicApp != nil),
		zap.Bool("debug", cfg.Server.Debug),
	)

	return NewRouter(RouterDeps{
		UserHandler:      handler.NewUserHandler(userService, paginator),
		RideHandler:      handler.NewRideHandler(rideService, paginator),
		RideEventHandler: handler.NewRideEventHandler(eventService, paginator),
		AuthHandler:      handler.NewAuthHandler(authService),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"store": deps.Repos.Ping,
			"redis": redisPing,
		}),
		Issuer:      issuer,
		Principals:  principals,
		Responses:   responses,
		Metrics:     metrics,
		Gatherer:    gatherer,
		NewRelicApp: deps.NewRelicApp,
		Debug:       cfg.Server.Debug,
	})
}
