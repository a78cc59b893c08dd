package http

import (
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/pkg/httputil"
	"github.com/pzron/ecom-sub002/services/combo/internal/service"
)

// ComboHandler serves the combo endpoints.
type ComboHandler struct {
	service *service.ComboService
	logger  *slog.Logger
}

// NewComboHandler creates a combo HTTP handler.
func NewComboHandler(svc *service.ComboService, logger *slog.Logger) *ComboHandler {
	return &ComboHandler{service: svc, logger: logger}
}

// ComboRequest is the body of the validate and quote endpoints.
type ComboRequest struct {
	TotalPrice   int64    `json:"total_price" validate:"gte=0"`
	ProductCount int      `json:"product_count" validate:"gte=0,lte=1000"`
	Categories   []string `json:"categories" validate:"max=100,dive,required,max=100"`
}

// GetConfig handles GET /api/v1/combo/config.
func (h *ComboHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Config())
}

// GetDiscount handles GET /api/v1/combo/discount?total=&count=.
func (h *ComboHandler) GetDiscount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	total, err := strconv.ParseInt(q.Get("total"), 10, 64)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("total must be an integer amount in minor units"), h.logger)
		return
	}
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("count must be an integer"), h.logger)
		return
	}

	res, err := h.service.Discount(r.Context(), total, count)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Validate handles POST /api/v1/combo/validate.
func (h *ComboHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ComboRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	v, err := h.service.Validate(r.Context(), req.TotalPrice, req.ProductCount, req.Categories)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, v)
}

// Quote handles POST /api/v1/combo/quote.
func (h *ComboHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req ComboRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.service.Quote(r.Context(), req.TotalPrice, req.ProductCount, req.Categories)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, q)
}
