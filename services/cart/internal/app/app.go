package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pzron/ecom-sub002/pkg/database"
	"github.com/pzron/ecom-sub002/pkg/health"
	pkgkafka "github.com/pzron/ecom-sub002/pkg/kafka"
	"github.com/pzron/ecom-sub002/pkg/tracing"
	"github.com/pzron/ecom-sub002/services/cart/internal/config"
	"github.com/pzron/ecom-sub002/services/cart/internal/event"
	handler "github.com/pzron/ecom-sub002/services/cart/internal/handler/http"
	redisrepo "github.com/pzron/ecom-sub002/services/cart/internal/repository/redis"
	"github.com/pzron/ecom-sub002/services/cart/internal/service"
	"github.com/pzron/ecom-sub002/services/cart/internal/store"
)

// App wires together all dependencies and runs the cart service.
type App struct {
	cfg           *config.Config
	logger        *slog.Logger
	rdb           *redis.Client
	producer      *pkgkafka.Producer
	persister     *store.Persister
	cartService   *service.CartService
	httpServer    *http.Server
	traceShutdown func(context.Context) error
}

// NewApp connects to Redis, builds the cart pipeline and the HTTP server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	traceShutdown, err := tracing.Init(ctx, tracing.FromBase("cart-service", cfg.Base))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to redis", slog.String("addr", cfg.Redis.Addr()), slog.Int("db", cfg.Redis.DB))

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	repo := redisrepo.NewCartRepository(rdb, cfg.CartTTL())
	persister := store.NewPersister(repo, logger, cfg.WriteTimeout)
	cartService := service.NewCartService(repo, persister, event.NewProducer(producer, logger), logger, service.Options{
		Currency:    cfg.Currency,
		SessionIdle: cfg.SessionIdle,
	})

	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(cartService, healthHandler, cfg.CORSOrigins, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		rdb:           rdb,
		producer:      producer,
		persister:     persister,
		cartService:   cartService,
		httpServer:    httpServer,
		traceShutdown: traceShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops the server, flushes pending cart writes and closes clients.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Writes must drain before Redis goes away.
	a.cartService.Close()
	a.persister.Close()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}
	if err := a.traceShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
