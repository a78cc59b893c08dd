package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/pzron/ecom-sub002/pkg/config"
	"github.com/pzron/ecom-sub002/pkg/pagination"
)

// Config holds all configuration for the assistant service.
type Config struct {
	pkgconfig.Base

	HTTPPort int `env:"ASSISTANT_HTTP_PORT" envDefault:"8005"`

	LLMBaseURL     string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// LLMRateLimit is the sustained request rate per second; LLMRateBurst
	// allows short spikes above it.
	LLMRateLimit float64 `env:"LLM_RATE_LIMIT" envDefault:"5"`
	LLMRateBurst int     `env:"LLM_RATE_BURST" envDefault:"10"`

	CatalogURL      string `env:"CATALOG_URL" envDefault:"http://localhost:8002"`
	ContextProducts int    `env:"ASSISTANT_CONTEXT_PRODUCTS" envDefault:"50"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load assistant config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	for name, raw := range map[string]string{"LLM_BASE_URL": c.LLMBaseURL, "CATALOG_URL": c.CatalogURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLMTemperature)
	}
	if c.LLMRateLimit <= 0 || c.LLMRateBurst < 1 {
		return fmt.Errorf("LLM_RATE_LIMIT must be positive and LLM_RATE_BURST at least 1")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.ContextProducts < 1 || c.ContextProducts > pagination.MaxPerPage {
		return fmt.Errorf("ASSISTANT_CONTEXT_PRODUCTS must be between 1 and %d, got %d", pagination.MaxPerPage, c.ContextProducts)
	}
	return c.Base.Validate()
}
