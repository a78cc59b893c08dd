package http

import (
	"log/slog"
	"net/http"

	"github.com/pzron/ecom-sub002/pkg/httputil"
	"github.com/pzron/ecom-sub002/services/assistant/internal/domain"
	"github.com/pzron/ecom-sub002/services/assistant/internal/service"
)

// AssistantHandler serves the assistant endpoints.
type AssistantHandler struct {
	service *service.AssistantService
	logger  *slog.Logger
}

// NewAssistantHandler creates an assistant HTTP handler.
func NewAssistantHandler(svc *service.AssistantService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{service: svc, logger: logger}
}

// MessageRequest is one conversation turn.
type MessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// ProductRequest is product context supplied by the caller.
type ProductRequest struct {
	ID            string  `json:"id" validate:"required,max=100"`
	Name          string  `json:"name" validate:"required,max=500"`
	Price         int64   `json:"price" validate:"gte=0"`
	OriginalPrice *int64  `json:"original_price" validate:"omitempty,gte=0"`
	Category      string  `json:"category" validate:"max=100"`
	Description   string  `json:"description" validate:"max=2000"`
	Rating        float64 `json:"rating" validate:"gte=0,lte=5"`
	InStock       bool    `json:"in_stock"`
}

// ChatRequest is the body of POST /api/v1/assistant/chat.
type ChatRequest struct {
	Messages []MessageRequest `json:"messages" validate:"required,min=1,max=50,dive"`
	Products []ProductRequest `json:"products" validate:"max=100,dive"`
}

// SearchRequest is the body of POST /api/v1/assistant/search.
type SearchRequest struct {
	Query    string           `json:"query" validate:"required,max=500"`
	Products []ProductRequest `json:"products" validate:"max=100,dive"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /api/v1/assistant/chat.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	messages := make([]domain.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = domain.Message{Role: domain.Role(m.Role), Content: m.Content}
	}

	reply := h.service.Chat(r.Context(), messages, toProducts(req.Products))
	httputil.WriteData(w, http.StatusOK, ChatResponse{Reply: reply})
}

// Search handles POST /api/v1/assistant/search.
func (h *AssistantHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	httputil.WriteData(w, http.StatusOK, h.service.Search(r.Context(), req.Query, toProducts(req.Products)))
}

func toProducts(in []ProductRequest) []domain.ProductContext {
	out := make([]domain.ProductContext, len(in))
	for i, p := range in {
		out[i] = domain.ProductContext{
			ID:            p.ID,
			Name:          p.Name,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Category:      p.Category,
			Description:   p.Description,
			Rating:        p.Rating,
			InStock:       p.InStock,
		}
	}
	return out
}
