package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pzron/ecom-sub002/pkg/database"
	"github.com/pzron/ecom-sub002/pkg/health"
	"github.com/pzron/ecom-sub002/pkg/tracing"
	"github.com/pzron/ecom-sub002/services/catalog/internal/config"
	handler "github.com/pzron/ecom-sub002/services/catalog/internal/handler/http"
	"github.com/pzron/ecom-sub002/services/catalog/internal/repository/postgres"
	"github.com/pzron/ecom-sub002/services/catalog/internal/service"
	"github.com/pzron/ecom-sub002/services/catalog/migrations"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	logger        *slog.Logger
	pool          *pgxpool.Pool
	httpServer    *http.Server
	traceShutdown func(context.Context) error
}

// NewApp connects to PostgreSQL, migrates the schema and builds the HTTP server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	traceShutdown, err := tracing.Init(ctx, tracing.FromBase("catalog-service", cfg.Base))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to postgres", slog.String("host", cfg.Postgres.Host), slog.String("db", cfg.Postgres.DBName))

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	if err := prometheus.Register(database.NewPoolStatsCollector(pool, "catalog")); err != nil {
		logger.Warn("pool stats collector not registered", slog.String("error", err.Error()))
	}

	catalogService := service.NewCatalogService(
		postgres.NewProductRepository(pool),
		postgres.NewCategoryRepository(pool),
		logger,
	)
	if err := catalogService.SeedCategories(ctx, cfg.SeedCategories); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(catalogService, healthHandler, cfg.CORSOrigins, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		logger:        logger,
		pool:          pool,
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

// Shutdown stops the server and closes the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.traceShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
