package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pzron/ecom-sub002/pkg/logger"
	"github.com/pzron/ecom-sub002/services/assistant/internal/client"
	"github.com/pzron/ecom-sub002/services/assistant/internal/domain"
)

// Fixed replies used when the model cannot answer.
const (
	MsgConfigurationError = "The shopping assistant is not configured correctly. Please contact support."
	MsgTransientFailure   = "Sorry, I'm having trouble responding right now. Please try again in a moment."
	MsgSearchFallback     = "I couldn't run that search right now, but here are some popular products you might like."
	MsgSearchDefault      = "Here are the products that best match your search."
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "assistant_requests_total",
	Help: "Assistant requests by operation and outcome.",
}, []string{"operation", "outcome"})

// Completer produces a chat completion.
type Completer interface {
	Complete(ctx context.Context, req client.CompletionRequest) (string, error)
}

// ProductSource lists known catalog products.
type ProductSource interface {
	ListProducts(ctx context.Context, limit int) ([]domain.ProductContext, error)
}

// Options tunes an AssistantService.
type Options struct {
	// ContextProducts caps the products embedded in a prompt and fetched
	// from the catalog.
	ContextProducts int
}

// AssistantService answers shopping questions. Its operations never fail:
// every error becomes a fixed, user-readable reply.
type AssistantService struct {
	llm     Completer
	catalog ProductSource
	logger  *slog.Logger
	opts    Options
}

// NewAssistantService creates a new assistant service.
func NewAssistantService(llm Completer, catalog ProductSource, logger *slog.Logger, opts Options) *AssistantService {
	if opts.ContextProducts <= 0 {
		opts.ContextProducts = 50
	}
	return &AssistantService{llm: llm, catalog: catalog, logger: logger, opts: opts}
}

// Chat answers a conversation, grounding the model in products.
func (s *AssistantService) Chat(ctx context.Context, messages []domain.Message, products []domain.ProductContext) string {
	log := logger.WithContext(ctx, s.logger)

	prompt := make([]domain.Message, 0, len(messages)+1)
	prompt = append(prompt, domain.Message{Role: domain.RoleSystem, Content: s.chatSystemPrompt(products)})
	prompt = append(prompt, messages...)

	reply, err := s.llm.Complete(ctx, client.CompletionRequest{Messages: prompt})
	if err == nil && reply == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		if errors.Is(err, client.ErrAuthentication) {
			log.ErrorContext(ctx, "assistant chat: llm authentication failed", slog.String("error", err.Error()))
			requestsTotal.WithLabelValues("chat", "auth_error").Inc()
			return MsgConfigurationError
		}
		log.WarnContext(ctx, "assistant chat failed", slog.String("error", err.Error()))
		requestsTotal.WithLabelValues("chat", "error").Inc()
		return MsgTransientFailure
	}

	requestsTotal.WithLabelValues("chat", "ok").Inc()
	return reply
}

// Search recommends up to domain.MaxRecommendations products for query.
// When products is empty the catalog supplies the candidates. Any failure
// yields the first candidates, with the configuration message when the model
// rejected the credentials and a default message otherwise.
func (s *AssistantService) Search(ctx context.Context, query string, products []domain.ProductContext) domain.SearchResult {
	log := logger.WithContext(ctx, s.logger)

	if len(products) == 0 {
		fetched, err := s.catalog.ListProducts(ctx, s.opts.ContextProducts)
		if err != nil {
			log.WarnContext(ctx, "assistant search: catalog unavailable", slog.String("error", err.Error()))
		}
		products = fetched
	}

	result, err := s.search(ctx, query, products)
	if err != nil {
		fallback := domain.SearchResult{Answer: MsgSearchFallback, ProductIDs: domain.FirstIDs(products)}
		if errors.Is(err, client.ErrAuthentication) {
			log.ErrorContext(ctx, "assistant search: llm authentication failed", slog.String("error", err.Error()))
			requestsTotal.WithLabelValues("search", "auth_error").Inc()
			fallback.Answer = MsgConfigurationError
			return fallback
		}
		log.WarnContext(ctx, "assistant search failed, using fallback", slog.String("error", err.Error()))
		requestsTotal.WithLabelValues("search", "error").Inc()
		return fallback
	}

	requestsTotal.WithLabelValues("search", "ok").Inc()
	return result
}

type searchReply struct {
	Answer     string   `json:"answer"`
	ProductIDs []string `json:"product_ids"`
}

func (s *AssistantService) search(ctx context.Context, query string, products []domain.ProductContext) (domain.SearchResult, error) {
	if len(products) == 0 {
		return domain.SearchResult{}, errors.New("no products to search")
	}

	raw, err := s.llm.Complete(ctx, client.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: s.searchSystemPrompt(products)},
			{Role: domain.RoleUser, Content: query},
		},
		JSONMode: true,
	})
	if err != nil {
		return domain.SearchResult{}, err
	}

	var reply searchReply
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &reply); err != nil {
		return domain.SearchResult{}, fmt.Errorf("decode search reply: %w", err)
	}

	answer := strings.TrimSpace(reply.Answer)
	if answer == "" {
		answer = MsgSearchDefault
	}
	return domain.SearchResult{
		Answer:     answer,
		ProductIDs: domain.FilterKnown(reply.ProductIDs, products),
	}, nil
}

func (s *AssistantService) chatSystemPrompt(products []domain.ProductContext) string {
	var b strings.Builder
	b.WriteString("You are a friendly shopping assistant for an online store. ")
	b.WriteString("Answer briefly and only recommend products from the list below. ")
	b.WriteString("Prices are in the store currency.\n")
	s.writeProducts(&b, products)
	return b.String()
}

func (s *AssistantService) searchSystemPrompt(products []domain.ProductContext) string {
	var b strings.Builder
	b.WriteString("You help shoppers find products. Reply with a JSON object ")
	b.WriteString(`{"answer": string, "product_ids": [string]} `)
	fmt.Fprintf(&b, "listing at most %d ids from the catalog below, best match first.\n", domain.MaxRecommendations)
	s.writeProducts(&b, products)
	return b.String()
}

func (s *AssistantService) writeProducts(b *strings.Builder, products []domain.ProductContext) {
	if len(products) == 0 {
		b.WriteString("No product information is available.")
		return
	}
	b.WriteString("Products:\n")
	for i, p := range products {
		if i == s.opts.ContextProducts {
			break
		}
		b.WriteString(p.Line())
		b.WriteByte('\n')
	}
}

// stripCodeFence removes a surrounding ```json fence some models add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
