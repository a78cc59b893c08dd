package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/pzron/ecom-sub002/pkg/config"
	"github.com/pzron/ecom-sub002/pkg/database"
)

// Config holds all configuration for the cart service.
type Config struct {
	pkgconfig.Base
	Redis database.RedisConfig

	HTTPPort int `env:"CART_HTTP_PORT" envDefault:"8003"`

	// CartTTLHours expires stored carts; 0 keeps them forever.
	CartTTLHours int    `env:"CART_TTL_HOURS" envDefault:"0"`
	Currency     string `env:"CART_CURRENCY" envDefault:"USD"`

	SessionIdle  time.Duration `env:"CART_SESSION_IDLE" envDefault:"30m"`
	WriteTimeout time.Duration `env:"CART_PERSIST_TIMEOUT" envDefault:"5s"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// CartTTL returns the storage expiry as a duration.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
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
	if c.CartTTLHours < 0 {
		return fmt.Errorf("CART_TTL_HOURS must not be negative, got %d", c.CartTTLHours)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("CART_CURRENCY must be a 3-letter code, got %q", c.Currency)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("CART_PERSIST_TIMEOUT must be positive")
	}
	return c.Base.Validate()
}
