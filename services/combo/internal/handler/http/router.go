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
	"github.com/pzron/ecom-sub002/services/combo/internal/service"
)

// NewRouter builds the combo service router.
func NewRouter(comboService *service.ComboService, healthHandler *health.Handler, corsOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(corsOrigins)))
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("combo"))
	r.Use(middleware.Tracing("combo"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewComboHandler(comboService, logger)

	r.Route("/api/v1/combo", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Get("/discount", h.GetDiscount)
		r.Post("/validate", h.Validate)
		r.Post("/quote", h.Quote)
	})

	return r
}
