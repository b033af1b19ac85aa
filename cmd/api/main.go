package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/salon-api/config"
	"github.com/jwalitptl/salon-api/internal/access"
	stripegw "github.com/jwalitptl/salon-api/internal/gateway/stripe"
	"github.com/jwalitptl/salon-api/internal/handler/health"
	paymentHandler "github.com/jwalitptl/salon-api/internal/handler/payment"
	promHandler "github.com/jwalitptl/salon-api/internal/handler/prometheus"
	"github.com/jwalitptl/salon-api/internal/handler/resource"
	webhookHandler "github.com/jwalitptl/salon-api/internal/handler/webhook"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/policy"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/repository/memory"
	"github.com/jwalitptl/salon-api/internal/repository/postgres"
	"github.com/jwalitptl/salon-api/internal/router"
	auditService "github.com/jwalitptl/salon-api/internal/service/audit"
	clientService "github.com/jwalitptl/salon-api/internal/service/client"
	paymentService "github.com/jwalitptl/salon-api/internal/service/payment"
	"github.com/jwalitptl/salon-api/internal/webhook"
	"github.com/jwalitptl/salon-api/pkg/auth"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/messaging"
	"github.com/jwalitptl/salon-api/pkg/messaging/redis"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics live on a private registry served at monitoring.metrics_path.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry, cfg.Monitoring.Namespace)

	// Initialize storage
	var store repository.Store
	switch cfg.Database.Driver {
	case "memory":
		log.Warn(nil, "using in-memory store, data is lost on exit")
		store = memory.New()
	default:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			log.Fatal(err, "failed to connect to database")
		}
		defer db.Close()
		store = postgres.NewStore(db, cfg.Database.SchemaCacheTTL, log)
	}

	// Initialize message broker
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		rb, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log)
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
		broker = rb
	} else {
		log.Warn(nil, "no redis url configured, lifecycle events stay in process")
		broker = messaging.NewMemoryBroker()
	}
	defer broker.Close()
	publisher := messaging.NewEventPublisher(broker, cfg.Redis.Channel, log, m)

	// Payment gateway
	gateway := stripegw.NewClient(stripegw.Config{
		APIKey:  cfg.Stripe.APIKey,
		Timeout: cfg.Payments.GatewayTimeout,
	}, log, m)
	verifier := stripegw.NewVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance)

	// Initialize services
	engine := policy.NewEngine(policy.DefaultTable(), store.Clients(), store.Schema(), log, m)
	recorder := auditService.NewRecorder()
	auditSvc := auditService.NewService(store.Audit())
	paymentSvc := paymentService.NewService(store, gateway, recorder, publisher, log, m, paymentService.Config{
		CommissionRate: cfg.Payments.CommissionRate,
		Currency:       cfg.Payments.Currency,
		GatewayTimeout: cfg.Payments.GatewayTimeout,
	})
	clientSvc := clientService.NewService(store, recorder, log)

	accessSvc := access.NewService(engine, access.NewMediator(), store, auditSvc, log)
	accessSvc.Register(model.ResourcePayments, paymentSvc)
	accessSvc.Register(model.ResourceClients, clientSvc)

	adapter := webhook.NewAdapter("stripe", verifier, paymentSvc, log, m)

	// Initialize handlers
	handlers := router.Handlers{
		Identity:  middleware.NewIdentityMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)),
		Resources: resource.NewHandler(accessSvc),
		Payments:  paymentHandler.NewHandler(accessSvc),
		Webhooks:  webhookHandler.NewHandler(adapter),
		Health:    health.NewHandler(store),
	}
	if cfg.Monitoring.PrometheusEnabled {
		handlers.Metrics = promHandler.New(registry)
	}

	routerCfg := router.RouterConfig{
		Mode:        cfg.Server.Mode,
		MaxBodySize: middleware.DefaultMaxBodySize,
		MetricsPath: cfg.Monitoring.MetricsPath,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
	}
	r := router.NewRouter(handlers, log, m, routerCfg)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info("server starting", "addr", srv.Addr, "store", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "server forced to shutdown")
	}
	log.Info("server exited")
}
