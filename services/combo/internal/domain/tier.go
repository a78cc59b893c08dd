package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier grants Discount (a fraction in [0,1]) to combos of at least
// MinProducts items.
type Tier struct {
	MinProducts int             `json:"min_products"`
	Discount    decimal.Decimal `json:"discount"`
}

// Tiers is an ordered tier list. It parses from "min:fraction" pairs
// separated by commas, e.g. "3:0.10,5:0.15,7:0.20".
type Tiers []Tier

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tiers) UnmarshalText(text []byte) error {
	parsed, err := ParseTiers(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// String renders the tiers back in their textual form.
func (t Tiers) String() string {
	parts := make([]string, len(t))
	for i, tier := range t {
		parts[i] = fmt.Sprintf("%d:%s", tier.MinProducts, tier.Discount.String())
	}
	return strings.Join(parts, ",")
}

// ParseTiers parses the textual tier form.
func ParseTiers(s string) (Tiers, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("tier list is empty")
	}

	var tiers Tiers
	for _, part := range strings.Split(s, ",") {
		minStr, discStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("tier %q: expected min_products:discount", part)
		}
		minProducts, err := strconv.Atoi(strings.TrimSpace(minStr))
		if err != nil {
			return nil, fmt.Errorf("tier %q: min products: %w", part, err)
		}
		discount, err := decimal.NewFromString(strings.TrimSpace(discStr))
		if err != nil {
			return nil, fmt.Errorf("tier %q: discount: %w", part, err)
		}
		tiers = append(tiers, Tier{MinProducts: minProducts, Discount: discount})
	}
	return tiers, nil
}

// sorted returns a copy ordered by ascending MinProducts. Equal thresholds
// keep their configuration order.
func (t Tiers) sorted() Tiers {
	out := make(Tiers, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinProducts < out[j].MinProducts
	})
	return out
}
