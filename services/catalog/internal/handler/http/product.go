package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/pkg/httputil"
	"github.com/pzron/ecom-sub002/pkg/pagination"
	"github.com/pzron/ecom-sub002/services/catalog/internal/service"
)

// CatalogHandler serves product and category endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// CreateProductRequest is the body of POST /api/v1/products.
type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,max=500"`
	Description   string  `json:"description" validate:"max=5000"`
	Category      string  `json:"category" validate:"required,max=100"`
	Price         int64   `json:"price" validate:"gte=0"`
	OriginalPrice *int64  `json:"original_price" validate:"omitempty,gte=0"`
	ImageURL      string  `json:"image_url" validate:"omitempty,url,max=2048"`
	Rating        float64 `json:"rating" validate:"gte=0,lte=5"`
	InStock       bool    `json:"in_stock"`
}

// ListProducts handles GET /api/v1/products. With ?ids=a,b it returns those
// products in the given order instead of a page.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if raw := q.Get("ids"); raw != "" {
		products, err := h.service.ListProductsByIDs(r.Context(), splitIDs(raw))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, products)
		return
	}

	in := service.ListProductsInput{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     pagination.FromRequest(r),
	}
	if raw := q.Get("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("in_stock must be true or false"), h.logger)
			return
		}
		in.InStock = &v
	}

	result, err := h.service.ListProducts(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// CreateProduct handles POST /api/v1/products.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.CreateProduct(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		ImageURL:      req.ImageURL,
		Rating:        req.Rating,
		InStock:       req.InStock,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, p)
}

// ListCategories handles GET /api/v1/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
