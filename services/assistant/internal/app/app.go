package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pzron/ecom-sub002/pkg/health"
	"github.com/pzron/ecom-sub002/pkg/httpclient"
	"github.com/pzron/ecom-sub002/pkg/tracing"
	"github.com/pzron/ecom-sub002/services/assistant/internal/client"
	"github.com/pzron/ecom-sub002/services/assistant/internal/config"
	handler "github.com/pzron/ecom-sub002/services/assistant/internal/handler/http"
	"github.com/pzron/ecom-sub002/services/assistant/internal/service"
)

// App wires together all dependencies and runs the assistant service.
type App struct {
	logger        *slog.Logger
	httpServer    *http.Server
	traceShutdown func(context.Context) error
}

// NewApp builds the LLM and catalog clients and the HTTP server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	traceShutdown, err := tracing.Init(ctx, tracing.FromBase("assistant-service", cfg.Base))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM_API_KEY is not set; assistant replies will report a configuration error")
	}

	llmHTTP := httpclient.DefaultConfig()
	llmHTTP.Timeout = cfg.LLMTimeout
	llmHTTP.MaxRetries = 1
	chatClient := client.NewChatClient(
		client.ChatConfig{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
		},
		httpclient.NewCircuitBreakerClient(httpclient.New(llmHTTP), httpclient.DefaultCircuitBreakerConfig("llm"), logger),
		rate.NewLimiter(rate.Limit(cfg.LLMRateLimit), cfg.LLMRateBurst),
	)

	catalogClient := client.NewCatalogClient(
		cfg.CatalogURL,
		httpclient.NewCircuitBreakerClient(httpclient.New(httpclient.DefaultConfig()), httpclient.DefaultCircuitBreakerConfig("catalog"), logger),
	)

	assistantService := service.NewAssistantService(chatClient, catalogClient, logger, service.Options{
		ContextProducts: cfg.ContextProducts,
	})
	logger.Info("assistant ready",
		slog.String("llm_base_url", cfg.LLMBaseURL),
		slog.String("model", cfg.LLMModel),
		slog.String("catalog_url", cfg.CatalogURL),
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler.NewRouter(assistantService, health.NewHandler(), cfg.CORSOrigins, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
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
