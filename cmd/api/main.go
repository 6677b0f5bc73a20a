package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/rota-api/internal/app"
	"github.com/jwalitptl/rota-api/internal/config"
	assignmentHandler "github.com/jwalitptl/rota-api/internal/handler/assignment"
	directoryHandler "github.com/jwalitptl/rota-api/internal/handler/directory"
	"github.com/jwalitptl/rota-api/internal/handler/health"
	rotaHandler "github.com/jwalitptl/rota-api/internal/handler/rota"
	"github.com/jwalitptl/rota-api/internal/middleware"
	"github.com/jwalitptl/rota-api/internal/router"
	"github.com/jwalitptl/rota-api/internal/worker"
	"github.com/jwalitptl/rota-api/pkg/logger"
	"github.com/jwalitptl/rota-api/pkg/messaging"
	"github.com/jwalitptl/rota-api/pkg/messaging/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("ROTA_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Output: os.Stdout,
		Pretty: cfg.Log.Pretty,
	})
	log.Logger = l.Zerolog()
	zerolog.DefaultContextLogger = &log.Logger
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exited properly")
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Change events go through redis when several replicas share the store.
	checks := map[string]health.Pinger{}
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		rb, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:              cfg.Redis.URL,
			MaxRetries:       cfg.Redis.MaxRetries,
			RetryBackoff:     cfg.Redis.RetryBackoff,
			PoolSize:         cfg.Redis.PoolSize,
			MinIdleConns:     cfg.Redis.MinIdleConns,
			FailureThreshold: cfg.Redis.FailureThreshold,
			OpenTimeout:      cfg.Redis.OpenTimeout,
		}, &log.Logger)
		if err != nil {
			return err
		}
		checks["redis"] = rb
		broker = rb
	} else {
		broker = messaging.NewLocalBroker(256)
	}
	defer broker.Close()

	a, err := app.New(ctx, cfg, reg, broker)
	if err != nil {
		return fmt.Errorf("failed to initialise application: %w", err)
	}
	defer a.Close()
	checks["store"] = a.Store

	// Replicas evict their own views; this worker applies everyone else's.
	invalidation := worker.NewInvalidationWorker(messaging.NewBrokerAdapter(broker), a.Cache,
		a.Publisher.Channel(), a.Publisher.Source(), a.Metrics)
	if err := invalidation.Start(ctx); err != nil {
		return err
	}

	if cfg.Reconcile.Interval > 0 {
		reconciler := worker.NewReconcileWorker(a.Engine, a.Notifier, cfg.Reconcile.Interval, cfg.Reconcile.DryRun)
		go reconciler.Start(ctx)
	}

	if err := middleware.RegisterValidators(middleware.DefaultValidationConfig()); err != nil {
		return err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Server.AllowedOrigins

	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	r := router.NewRouter(router.RouterConfig{
		RateLimit:      limit,
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSConfig:     cors,
		Actor: middleware.ActorConfig{
			JWTSecret: cfg.Auth.JWTSecret,
			Issuer:    cfg.Auth.Issuer,
		},
		MetricsNamespace: cfg.Server.MetricsNamespace,
		Registerer:       reg,
	},
		health.NewHandler(checks, reg),
		directoryHandler.NewHandler(a.Directory),
		assignmentHandler.NewHandler(a.Assignment),
		rotaHandler.NewHandler(a.Rota),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("store", cfg.Database.Driver).
			Bool("redis", cfg.Redis.Enabled).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
