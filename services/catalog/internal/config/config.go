package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/pzron/ecom-sub002/pkg/config"
	"github.com/pzron/ecom-sub002/pkg/database"
)

// Config holds all configuration for the catalog service.
type Config struct {
	pkgconfig.Base
	Postgres database.PostgresConfig

	HTTPPort int `env:"CATALOG_HTTP_PORT" envDefault:"8002"`

	SeedCategories     []string      `env:"CATALOG_SEED_CATEGORIES" envDefault:"Electronics,Fashion,Home & Kitchen,Beauty,Sports,Books" envSeparator:","`
	SlowQueryThreshold time.Duration `env:"CATALOG_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
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
	if c.Postgres.MaxConns < c.Postgres.MinConns {
		return fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Postgres.MaxConns, c.Postgres.MinConns)
	}
	if c.SlowQueryThreshold < 0 {
		return fmt.Errorf("CATALOG_SLOW_QUERY_THRESHOLD must not be negative")
	}
	return c.Base.Validate()
}
