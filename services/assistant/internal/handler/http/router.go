package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pzron/ecom-sub002/pkg/health"
	"github.com/pzron/ecom-sub002/pkg/middleware"
	"github.com/pzron/ecom-sub002/services/assistant/internal/service"
)

// NewRouter builds the assistant service router.
func NewRouter(assistantService *service.AssistantService, healthHandler *health.Handler, corsOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(corsOrigins)))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("assistant"))
	r.Use(middleware.Tracing("assistant"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewAssistantHandler(assistantService, logger)

	r.Route("/api/v1/assistant", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Post("/search", h.Search)
	})

	return r
}
