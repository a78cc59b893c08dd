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
	"github.com/pzron/ecom-sub002/services/cart/internal/service"
)

// NewRouter builds the cart service router.
func NewRouter(cartService *service.CartService, healthHandler *health.Handler, corsOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(corsOrigins)))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewCartHandler(cartService, logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)

		r.Post("/items", h.AddItem)
		r.Put("/items/{itemId}", h.UpdateItemQuantity)
		r.Delete("/items/{itemId}", h.RemoveItem)
	})

	return r
}
