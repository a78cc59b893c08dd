package config

import (
	"fmt"

	pkgconfig "github.com/pzron/ecom-sub002/pkg/config"
	"github.com/pzron/ecom-sub002/services/combo/internal/domain"
)

// Config holds all configuration for the combo service.
type Config struct {
	pkgconfig.Base

	HTTPPort int `env:"COMBO_HTTP_PORT" envDefault:"8004"`

	MinComboPrice         int64        `env:"COMBO_MIN_PRICE" envDefault:"2000"`
	MinProducts           int          `env:"COMBO_MIN_PRODUCTS" envDefault:"3"`
	MaxProducts           int          `env:"COMBO_MAX_PRODUCTS" envDefault:"10"`
	AllowedCategories     []string     `env:"COMBO_ALLOWED_CATEGORIES" envDefault:"Electronics,Fashion,Home & Kitchen,Beauty,Sports,Books" envSeparator:","`
	Tiers                 domain.Tiers `env:"COMBO_TIERS" envDefault:"3:0.10,5:0.15,7:0.20"`
	FreeShippingThreshold int64        `env:"COMBO_FREE_SHIPPING_THRESHOLD" envDefault:"5000"`
}

// Combo returns the rule set the engine is built from.
func (c *Config) Combo() domain.ComboConfig {
	return domain.ComboConfig{
		MinComboPrice:         c.MinComboPrice,
		MinProducts:           c.MinProducts,
		MaxProducts:           c.MaxProducts,
		AllowedCategories:     c.AllowedCategories,
		Tiers:                 c.Tiers,
		FreeShippingThreshold: c.FreeShippingThreshold,
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load combo config: %w", err)
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
	if c.FreeShippingThreshold < 0 {
		return fmt.Errorf("COMBO_FREE_SHIPPING_THRESHOLD must not be negative, got %d", c.FreeShippingThreshold)
	}
	if err := c.Combo().Validate(); err != nil {
		return fmt.Errorf("invalid combo rules: %w", err)
	}
	return c.Base.Validate()
}
