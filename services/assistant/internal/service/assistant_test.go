package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzron/ecom-sub002/services/assistant/internal/client"
	"github.com/pzron/ecom-sub002/services/assistant/internal/domain"
)

type completerFunc func(ctx context.Context, req client.CompletionRequest) (string, error)

func (f completerFunc) Complete(ctx context.Context, req client.CompletionRequest) (string, error) {
	return f(ctx, req)
}

type fakeCatalog struct {
	products []domain.ProductContext
	err      error
	calls    int
	limit    int
}

func (f *fakeCatalog) ListProducts(_ context.Context, limit int) ([]domain.ProductContext, error) {
	f.calls++
	f.limit = limit
	return f.products, f.err
}

func catalogProducts(n int) []domain.ProductContext {
	out := make([]domain.ProductContext, n)
	for i := range out {
		out[i] = domain.ProductContext{ID: fmt.Sprintf("p-%d", i+1), Name: fmt.Sprintf("Item %d", i+1), Price: 1000, InStock: true}
	}
	return out
}

func newService(llm Completer, catalog ProductSource) *AssistantService {
	return NewAssistantService(llm, catalog, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), Options{ContextProducts: 20})
}

func reply(s string) completerFunc {
	return func(context.Context, client.CompletionRequest) (string, error) { return s, nil }
}

func failing(err error) completerFunc {
	return func(context.Context, client.CompletionRequest) (string, error) { return "", err }
}

func TestChat_ReturnsModelReply(t *testing.T) {
	var seen client.CompletionRequest
	llm := completerFunc(func(_ context.Context, req client.CompletionRequest) (string, error) {
		seen = req
		return "The kettle is a great pick.", nil
	})
	svc := newService(llm, &fakeCatalog{})

	out := svc.Chat(context.Background(),
		[]domain.Message{{Role: domain.RoleUser, Content: "What should I buy?"}},
		catalogProducts(2))

	assert.Equal(t, "The kettle is a great pick.", out)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, domain.RoleSystem, seen.Messages[0].Role)
	assert.Contains(t, seen.Messages[0].Content, "[p-2] Item 2")
	assert.Equal(t, "What should I buy?", seen.Messages[1].Content)
	assert.False(t, seen.JSONMode)
}

func TestChat_AuthFailure(t *testing.T) {
	svc := newService(failing(fmt.Errorf("%w: status 401", client.ErrAuthentication)), &fakeCatalog{})

	assert.Equal(t, MsgConfigurationError, svc.Chat(context.Background(), nil, nil))
}

func TestChat_TransientFailures(t *testing.T) {
	for _, llm := range []Completer{
		failing(errors.New("server error 500")),
		failing(context.DeadlineExceeded),
		reply(""),
	} {
		svc := newService(llm, &fakeCatalog{})
		assert.Equal(t, MsgTransientFailure, svc.Chat(context.Background(), nil, nil))
	}
}

func TestSearch_FiltersUnknownAndCaps(t *testing.T) {
	llm := reply("```json\n" + `{"answer":"Great picks","product_ids":["p-2","ghost","p-4","p-1","p-6","p-7","p-8"]}` + "\n```")
	svc := newService(llm, &fakeCatalog{})

	res := svc.Search(context.Background(), "gift ideas", catalogProducts(10))

	assert.Equal(t, "Great picks", res.Answer)
	assert.Equal(t, []string{"p-2", "p-4", "p-1", "p-6", "p-7"}, res.ProductIDs)
}

func TestSearch_UsesJSONMode(t *testing.T) {
	var seen client.CompletionRequest
	llm := completerFunc(func(_ context.Context, req client.CompletionRequest) (string, error) {
		seen = req
		return `{"answer":"","product_ids":[]}`, nil
	})
	svc := newService(llm, &fakeCatalog{})

	res := svc.Search(context.Background(), "lamps", catalogProducts(1))

	assert.True(t, seen.JSONMode)
	assert.Equal(t, "lamps", seen.Messages[1].Content)
	assert.Equal(t, MsgSearchDefault, res.Answer)
	assert.Empty(t, res.ProductIDs)
}

func TestSearch_FailureFallsBackToFirstFive(t *testing.T) {
	tests := map[string]struct {
		llm    Completer
		answer string
	}{
		"transient": {failing(errors.New("connection reset")), MsgSearchFallback},
		"auth":      {failing(client.ErrAuthentication), MsgConfigurationError},
		"bad json":  {reply("I think you would like p-1"), MsgSearchFallback},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newService(tt.llm, &fakeCatalog{})

			res := svc.Search(context.Background(), "shoes", catalogProducts(8))

			assert.Equal(t, tt.answer, res.Answer)
			assert.Equal(t, []string{"p-1", "p-2", "p-3", "p-4", "p-5"}, res.ProductIDs)
		})
	}
}

func TestSearch_FetchesCatalogWhenNoProducts(t *testing.T) {
	catalog := &fakeCatalog{products: catalogProducts(3)}
	var prompt string
	llm := completerFunc(func(_ context.Context, req client.CompletionRequest) (string, error) {
		prompt = req.Messages[0].Content
		return `{"answer":"Try these","product_ids":["p-3"]}`, nil
	})
	svc := newService(llm, catalog)

	res := svc.Search(context.Background(), "anything", nil)

	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, 20, catalog.limit)
	assert.True(t, strings.Contains(prompt, "[p-3] Item 3"))
	assert.Equal(t, []string{"p-3"}, res.ProductIDs)
}

func TestSearch_CatalogDownAndNoProducts(t *testing.T) {
	called := false
	llm := completerFunc(func(context.Context, client.CompletionRequest) (string, error) {
		called = true
		return "", nil
	})
	svc := newService(llm, &fakeCatalog{err: errors.New("catalog returned status 503")})

	res := svc.Search(context.Background(), "anything", nil)

	assert.False(t, called)
	assert.Equal(t, MsgSearchFallback, res.Answer)
	assert.NotNil(t, res.ProductIDs)
	assert.Empty(t, res.ProductIDs)
}

func TestSearch_SuppliedProductsSkipCatalog(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := newService(reply(`{"answer":"ok","product_ids":["p-1"]}`), catalog)

	svc.Search(context.Background(), "q", catalogProducts(2))

	assert.Zero(t, catalog.calls)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}
