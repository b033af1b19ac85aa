package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/internal/handler/health"
	"github.com/jwalitptl/salon-api/internal/handler/payment"
	"github.com/jwalitptl/salon-api/internal/handler/prometheus"
	"github.com/jwalitptl/salon-api/internal/handler/resource"
	"github.com/jwalitptl/salon-api/internal/handler/webhook"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(gin.IRouter)
}

type Router struct {
	engine *gin.Engine
}

type RouterConfig struct {
	Mode string
	// RateLimiter guards the API and webhook groups. Nil disables it.
	RateLimiter *middleware.RateLimiter
	MaxBodySize int64
	MetricsPath string
}

type Handlers struct {
	Identity  *middleware.IdentityMiddleware
	Resources *resource.Handler
	Payments  *payment.Handler
	Webhooks  *webhook.Handler
	Health    *health.Handler
	// Metrics is nil when the Prometheus endpoint is disabled.
	Metrics *prometheus.Handler
}

func NewRouter(h Handlers, log *logger.Logger, m *metrics.Metrics, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()

	// Core middlewares. RequestID runs first so every later log line has it.
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		middleware.Metrics(m),
	)

	h.Health.RegisterRoutes(engine)
	if h.Metrics != nil {
		path := config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, h.Metrics.Handler())
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.SecurityHeaders(), middleware.SizeLimit(config.MaxBodySize))
	if config.RateLimiter != nil {
		api.Use(config.RateLimiter.RateLimit())
	}

	// Gateway callbacks authenticate by signature, not by bearer token.
	h.Webhooks.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(h.Identity.Authenticate())
	for _, handler := range []Handler{h.Resources, h.Payments} {
		handler.RegisterRoutes(protected)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
