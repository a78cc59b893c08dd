package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pzron/ecom-sub002/pkg/httputil"
	"github.com/pzron/ecom-sub002/services/cart/internal/domain"
	"github.com/pzron/ecom-sub002/services/cart/internal/service"
)

// CartHandler serves the cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	ID        string `json:"id" validate:"required,max=100"`
	Name      string `json:"name" validate:"required,max=500"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0,lte=100000000"`
	Image     string `json:"image" validate:"max=2048"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=100"`
}

// UpdateQuantityRequest is the body of PUT /api/v1/cart/items/{itemId}.
// A quantity of 0 or less removes the item.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartResponse is the cart representation returned by every endpoint.
type CartResponse struct {
	SessionID  string            `json:"session_id"`
	Items      []domain.LineItem `json:"items"`
	TotalPrice int64             `json:"total_price"`
	ItemCount  int               `json:"item_count"`
	Currency   string            `json:"currency"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

func toResponse(c domain.Cart) CartResponse {
	resp := CartResponse{
		SessionID:  c.SessionID,
		Items:      c.Items,
		TotalPrice: c.TotalPrice(),
		ItemCount:  c.ItemCount(),
		Currency:   c.Currency,
	}
	if resp.Items == nil {
		resp.Items = []domain.LineItem{}
	}
	if !c.UpdatedAt.IsZero() {
		ts := c.UpdatedAt
		resp.UpdatedAt = &ts
	}
	return resp
}

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toResponse(cart))
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), sessionIDFromContext(r.Context()), service.AddItemInput{
		ID:        req.ID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Image:     req.Image,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toResponse(cart))
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemId}.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "itemId"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toResponse(cart))
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(), sessionIDFromContext(r.Context()), chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toResponse(cart))
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, toResponse(cart))
}
