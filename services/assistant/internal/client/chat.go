package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pzron/ecom-sub002/pkg/httpclient"
	"github.com/pzron/ecom-sub002/services/assistant/internal/domain"
)

// ErrAuthentication is returned when the LLM provider rejects the credentials
// or no API key is configured.
var ErrAuthentication = errors.New("llm authentication failed")

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionRequest is one chat completion call.
type CompletionRequest struct {
	Messages []domain.Message
	// JSONMode asks the provider for a JSON object response.
	JSONMode bool
}

type chatRequest struct {
	Model          string           `json:"model"`
	Messages       []domain.Message `json:"messages"`
	Temperature    float64          `json:"temperature"`
	MaxTokens      int              `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat  `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ChatClient calls an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	http    *httpclient.CircuitBreakerClient
	limiter *rate.Limiter
	cfg     ChatConfig
}

// NewChatClient creates a ChatClient. Calls wait on limiter before they are
// sent.
func NewChatClient(cfg ChatConfig, hc *httpclient.CircuitBreakerClient, limiter *rate.Limiter) *ChatClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ChatClient{http: hc, limiter: limiter, cfg: cfg}
}

// Complete returns the content of the first completion choice.
func (c *ChatClient) Complete(ctx context.Context, in CompletionRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrAuthentication)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    in.Messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	if in.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d", ErrAuthentication, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("chat completion returned status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat completion error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
