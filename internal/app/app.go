package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/shopfront/internal/config"
	"github.com/utafrali/shopfront/internal/event"
	handlerhttp "github.com/utafrali/shopfront/internal/handler/http"
	redisrepo "github.com/utafrali/shopfront/internal/repository/redis"
	"github.com/utafrali/shopfront/internal/service"
	"github.com/utafrali/shopfront/internal/upstream"
	"github.com/utafrali/shopfront/pkg/health"
	"github.com/utafrali/shopfront/pkg/httpclient"
	"github.com/utafrali/shopfront/pkg/kafka"
	"github.com/utafrali/shopfront/pkg/tracing"
)

// App wires together all dependencies and owns their lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	redisClient     *redis.Client
	kafkaProducer   *kafka.Producer
	tracerShutdown  func(context.Context) error
	server          *http.Server
	shutdownTimeout time.Duration
}

// New builds the application: connects Redis, prepares the Kafka producer,
// constructs the upstream client behind a circuit breaker, and assembles the
// services, handlers, and router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		cfg:             cfg,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	if cfg.OTLPEndpoint != "" {
		shutdown, err := tracing.InitTracer(ctx, tracing.Config{
			ServiceName:    "shopfront",
			ServiceVersion: "0.1.0",
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTLPEndpoint,
			SampleRate:     cfg.TraceSampleRatio,
			Enabled:        true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init tracer: %w", err)
		}
		a.tracerShutdown = shutdown
	}

	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := a.redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.kafkaProducer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

	// Resource fetches make exactly one upstream call per initiation, so the
	// client never retries; the breaker sheds load when upstream degrades.
	upstreamHTTP := httpclient.New(func() httpclient.Config {
		c := httpclient.SingleShotConfig()
		c.Timeout = cfg.UpstreamTimeout
		return c
	}())
	breaker := httpclient.NewCircuitBreakerClient(upstreamHTTP, httpclient.DefaultCircuitBreakerConfig("storefront-upstream"), logger)
	upstreamClient := upstream.New(breaker, cfg.UpstreamBaseURL, cfg.UpstreamToken)

	sessions := redisrepo.NewCartSessions(a.redisClient, cfg.CartTTL)
	producer := event.NewProducer(a.kafkaProducer, logger)

	cartSvc := service.NewCartService(sessions, upstreamClient, producer, logger, cfg.CartTTL)
	storefrontSvc := service.NewStorefrontService(upstreamClient, producer, logger, cfg.JWTSecret, cfg.SessionTTL)

	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return a.redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", a.kafkaProducer.Ping)

	router := handlerhttp.NewRouter(handlerhttp.RouterConfig{
		Cart:           handlerhttp.NewCartHandler(cartSvc, logger),
		Catalog:        handlerhttp.NewCatalogHandler(storefrontSvc, logger),
		Forum:          handlerhttp.NewForumHandler(storefrontSvc, logger),
		Users:          handlerhttp.NewUserHandler(storefrontSvc, logger),
		Health:         healthHandler,
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		return a.Shutdown()
	}
}

// Shutdown drains the HTTP server and closes downstream connections.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}
	if err := a.kafkaProducer.Close(); err != nil {
		a.logger.Error("kafka producer close failed", slog.String("error", err.Error()))
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close failed", slog.String("error", err.Error()))
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
