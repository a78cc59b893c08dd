package domain

import (
	"fmt"
	"strings"
)

// MaxRecommendations caps the product ids returned by a search.
const MaxRecommendations = 5

// Role tags the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ProductContext is the product information the assistant may talk about.
// Prices are in minor currency units.
type ProductContext struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         int64   `json:"price"`
	OriginalPrice *int64  `json:"original_price,omitempty"`
	Category      string  `json:"category"`
	Description   string  `json:"description,omitempty"`
	Rating        float64 `json:"rating"`
	InStock       bool    `json:"in_stock"`
}

// Line renders the product as a single prompt line.
func (p ProductContext) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- [%s] %s | %s | %s", p.ID, p.Name, p.Category, formatPrice(p.Price))
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
		fmt.Fprintf(&b, " (was %s)", formatPrice(*p.OriginalPrice))
	}
	fmt.Fprintf(&b, " | rating %.1f", p.Rating)
	if !p.InStock {
		b.WriteString(" | out of stock")
	}
	if p.Description != "" {
		b.WriteString(" | ")
		b.WriteString(p.Description)
	}
	return b.String()
}

func formatPrice(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// SearchResult is the structured answer to a product search.
type SearchResult struct {
	Answer     string   `json:"answer"`
	ProductIDs []string `json:"product_ids"`
}

// FilterKnown keeps ids present in known, drops duplicates and caps the
// result at MaxRecommendations, preserving order.
func FilterKnown(ids []string, known []ProductContext) []string {
	index := make(map[string]struct{}, len(known))
	for _, p := range known {
		index[p.ID] = struct{}{}
	}

	out := make([]string, 0, MaxRecommendations)
	for _, id := range ids {
		if len(out) == MaxRecommendations {
			break
		}
		if _, ok := index[id]; !ok {
			continue
		}
		out = append(out, id)
		delete(index, id)
	}
	return out
}

// FirstIDs returns the ids of the first MaxRecommendations products.
func FirstIDs(products []ProductContext) []string {
	n := min(len(products), MaxRecommendations)
	ids := make([]string, n)
	for i := range n {
		ids[i] = products[i].ID
	}
	return ids
}
