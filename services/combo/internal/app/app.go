package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pzron/ecom-sub002/pkg/health"
	"github.com/pzron/ecom-sub002/pkg/tracing"
	"github.com/pzron/ecom-sub002/services/combo/internal/config"
	"github.com/pzron/ecom-sub002/services/combo/internal/domain"
	handler "github.com/pzron/ecom-sub002/services/combo/internal/handler/http"
	"github.com/pzron/ecom-sub002/services/combo/internal/service"
)

// App wires together all dependencies and runs the combo service.
type App struct {
	logger        *slog.Logger
	httpServer    *http.Server
	traceShutdown func(context.Context) error
}

// NewApp builds the combo engine and the HTTP server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	traceShutdown, err := tracing.Init(ctx, tracing.FromBase("combo-service", cfg.Base))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	engine, err := domain.NewEngine(cfg.Combo())
	if err != nil {
		return nil, err
	}
	logger.Info("combo engine ready",
		slog.String("tiers", cfg.Tiers.String()),
		slog.Int64("min_combo_price", cfg.MinComboPrice),
		slog.Int("min_products", cfg.MinProducts),
		slog.Int("max_products", cfg.MaxProducts),
	)

	comboService := service.NewComboService(engine, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(comboService, health.NewHandler(), cfg.CORSOrigins, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		logger:        logger,
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

// Shutdown stops the HTTP server and flushes traces.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	if err := a.traceShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
