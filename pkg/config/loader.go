package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Base holds settings shared by every storefront service. Embed it in a
// service Config so the common variables are parsed alongside service ones.
type Base struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// CORS origins allowed to call the storefront APIs from the browser.
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Validate checks the shared invariants.
func (b *Base) Validate() error {
	if b.OTELSampleRate < 0 || b.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", b.OTELSampleRate)
	}
	return nil
}

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    config.Base
//	    Port int `env:"HTTP_PORT" envDefault:"8080"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadPrefixed is like Load but only reads variables starting with prefix,
// e.g. "COMBO_" turns `env:"MIN_PRICE"` into COMBO_MIN_PRICE.
func LoadPrefixed(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse %s config: %w", prefix, err)
	}
	return nil
}
