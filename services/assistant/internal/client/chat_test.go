package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pzron/ecom-sub002/pkg/httpclient"
	"github.com/pzron/ecom-sub002/services/assistant/internal/domain"
)

func testBreaker(name string) *httpclient.CircuitBreakerClient {
	hc := httpclient.New(httpclient.Config{
		Timeout:      time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return httpclient.NewCircuitBreakerClient(hc, httpclient.DefaultCircuitBreakerConfig(name), logger)
}

func newChatClient(url, key string) *ChatClient {
	return NewChatClient(ChatConfig{
		BaseURL:     url + "/",
		APIKey:      key,
		Model:       "test-model",
		Temperature: 0.2,
		MaxTokens:   256,
	}, testBreaker("llm-test"), rate.NewLimiter(rate.Inf, 1))
}

func TestChatClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Try the blender.  "}}]}`))
	}))
	defer srv.Close()

	out, err := newChatClient(srv.URL, "sk-test").Complete(context.Background(), CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		JSONMode: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Try the blender.", out)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, got.Messages)
}

func TestChatClient_AuthFailure(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
		}))

		_, err := newChatClient(srv.URL, "sk-bad").Complete(context.Background(), CompletionRequest{})
		assert.True(t, errors.Is(err, ErrAuthentication), "status %d", status)
		srv.Close()
	}
}

func TestChatClient_MissingKey(t *testing.T) {
	_, err := newChatClient("http://127.0.0.1:1", "").Complete(context.Background(), CompletionRequest{})

	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestChatClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newChatClient(srv.URL, "sk-test").Complete(context.Background(), CompletionRequest{})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAuthentication))
	var se *httpclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestChatClient_BadPayloads(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"no choices", `{"choices":[]}`, "no choices"},
		{"provider error", `{"error":{"message":"model overloaded"}}`, "model overloaded"},
		{"not json", `<html>`, "decode chat response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newChatClient(srv.URL, "sk-test").Complete(context.Background(), CompletionRequest{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestChatClient_RateLimiterHonoursContext(t *testing.T) {
	c := NewChatClient(ChatConfig{BaseURL: "http://127.0.0.1:1", APIKey: "sk"}, testBreaker("llm-test"), rate.NewLimiter(rate.Every(time.Hour), 1))
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
