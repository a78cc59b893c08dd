package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ComboConfig holds the static combo rules. Prices are in minor currency units.
type ComboConfig struct {
	MinComboPrice         int64    `json:"min_combo_price"`
	MinProducts           int      `json:"min_products"`
	MaxProducts           int      `json:"max_products"`
	AllowedCategories     []string `json:"allowed_categories"`
	Tiers                 Tiers    `json:"tiers"`
	FreeShippingThreshold int64    `json:"free_shipping_threshold"`
}

// DefaultComboConfig returns the storefront's standard combo rules.
func DefaultComboConfig() ComboConfig {
	return ComboConfig{
		MinComboPrice:     2000,
		MinProducts:       3,
		MaxProducts:       10,
		AllowedCategories: []string{"Electronics", "Fashion", "Home & Kitchen", "Beauty", "Sports", "Books"},
		Tiers: Tiers{
			{MinProducts: 3, Discount: decimal.RequireFromString("0.10")},
			{MinProducts: 5, Discount: decimal.RequireFromString("0.15")},
			{MinProducts: 7, Discount: decimal.RequireFromString("0.20")},
		},
		FreeShippingThreshold: 5000,
	}
}

// Validate reports configuration that would make the engine meaningless.
func (c ComboConfig) Validate() error {
	var errs []error
	if c.MinComboPrice < 0 {
		errs = append(errs, fmt.Errorf("min combo price must not be negative"))
	}
	if c.MinProducts < 1 {
		errs = append(errs, fmt.Errorf("min products must be at least 1"))
	}
	if c.MaxProducts < c.MinProducts {
		errs = append(errs, fmt.Errorf("max products (%d) must be >= min products (%d)", c.MaxProducts, c.MinProducts))
	}
	if len(c.Tiers) == 0 {
		errs = append(errs, fmt.Errorf("at least one discount tier is required"))
	}
	one := decimal.NewFromInt(1)
	for _, t := range c.Tiers {
		if t.MinProducts < 1 {
			errs = append(errs, fmt.Errorf("tier min products must be at least 1, got %d", t.MinProducts))
		}
		if t.Discount.IsNegative() || t.Discount.GreaterThan(one) {
			errs = append(errs, fmt.Errorf("tier discount must be within [0, 1], got %s", t.Discount))
		}
	}
	return errors.Join(errs...)
}

// Validation is the outcome of IsValidCombo. Errors is empty exactly when
// Valid is true.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Quote combines every combo figure for one basket.
type Quote struct {
	TotalPrice        int64      `json:"total_price"`
	ProductCount      int        `json:"product_count"`
	Discount          int64      `json:"discount"`
	SavingsPercentage float64    `json:"savings_percentage"`
	FinalPrice        int64      `json:"final_price"`
	FreeShipping      bool       `json:"free_shipping"`
	Validation        Validation `json:"validation"`
}

// Engine evaluates combo rules. It is immutable and safe for concurrent use.
type Engine struct {
	cfg     ComboConfig
	tiers   Tiers
	allowed map[string]struct{}
}

// NewEngine validates cfg and builds an Engine.
func NewEngine(cfg ComboConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid combo config: %w", err)
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedCategories))
	for _, c := range cfg.AllowedCategories {
		allowed[c] = struct{}{}
	}

	cfg.AllowedCategories = append([]string(nil), cfg.AllowedCategories...)
	cfg.Tiers = append(Tiers(nil), cfg.Tiers...)

	return &Engine{cfg: cfg, tiers: cfg.Tiers.sorted(), allowed: allowed}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() ComboConfig {
	cfg := e.cfg
	cfg.AllowedCategories = append([]string(nil), e.cfg.AllowedCategories...)
	cfg.Tiers = append(Tiers(nil), e.cfg.Tiers...)
	return cfg
}

// tierFor scans from the highest threshold down and returns the first tier
// whose MinProducts does not exceed productCount. Among equal thresholds the
// one configured last wins.
func (e *Engine) tierFor(productCount int) (Tier, bool) {
	for i := len(e.tiers) - 1; i >= 0; i-- {
		if e.tiers[i].MinProducts <= productCount {
			return e.tiers[i], true
		}
	}
	return Tier{}, false
}

// CalculateComboDiscount returns the discount for a combo, rounded half away
// from zero to whole minor units. It is 0 when no tier applies.
func (e *Engine) CalculateComboDiscount(totalPrice int64, productCount int) int64 {
	tier, ok := e.tierFor(productCount)
	if !ok {
		return 0
	}
	return decimal.NewFromInt(totalPrice).Mul(tier.Discount).Round(0).IntPart()
}

// ComboSavingsPercentage returns the applicable tier's discount as a
// percentage, or 0.
func (e *Engine) ComboSavingsPercentage(productCount int) float64 {
	tier, ok := e.tierFor(productCount)
	if !ok {
		return 0
	}
	return tier.Discount.Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// IsValidCombo checks every rule and reports all violations together.
func (e *Engine) IsValidCombo(totalPrice int64, productCount int, categories []string) Validation {
	errs := []string{}

	if totalPrice < e.cfg.MinComboPrice {
		errs = append(errs, fmt.Sprintf("Combo total must be at least %d", e.cfg.MinComboPrice))
	}
	if productCount < e.cfg.MinProducts {
		errs = append(errs, fmt.Sprintf("Combo must contain at least %d products", e.cfg.MinProducts))
	}
	if productCount > e.cfg.MaxProducts {
		errs = append(errs, fmt.Sprintf("Combo can contain at most %d products", e.cfg.MaxProducts))
	}

	var disallowed []string
	for _, c := range categories {
		if _, ok := e.allowed[c]; !ok {
			disallowed = append(disallowed, c)
		}
	}
	if len(disallowed) > 0 {
		errs = append(errs, "Categories not allowed in combos: "+strings.Join(disallowed, ", "))
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// QualifiesForFreeShipping reports whether amount reaches the free-shipping
// threshold.
func (e *Engine) QualifiesForFreeShipping(amount int64) bool {
	return amount >= e.cfg.FreeShippingThreshold
}

// Quote prices a basket as a combo. Invalid combos get no discount; free
// shipping is judged on the price after discount.
func (e *Engine) Quote(totalPrice int64, productCount int, categories []string) Quote {
	q := Quote{
		TotalPrice:   totalPrice,
		ProductCount: productCount,
		Validation:   e.IsValidCombo(totalPrice, productCount, categories),
	}
	if q.Validation.Valid {
		q.Discount = e.CalculateComboDiscount(totalPrice, productCount)
		q.SavingsPercentage = e.ComboSavingsPercentage(productCount)
	}
	q.FinalPrice = totalPrice - q.Discount
	q.FreeShipping = e.QualifiesForFreeShipping(q.FinalPrice)
	return q
}
