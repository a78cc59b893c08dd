package domain

import "time"

// Product is a sellable catalog item. Prices are in minor currency units.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"original_price,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Rating        float64   `json:"rating"`
	InStock       bool      `json:"in_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OnSale reports whether the product is priced below its original price.
func (p *Product) OnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// DiscountPercentage returns the markdown from the original price as a whole
// percentage, or 0 when the product is not on sale.
func (p *Product) DiscountPercentage() int {
	if !p.OnSale() || *p.OriginalPrice == 0 {
		return 0
	}
	return int((*p.OriginalPrice - p.Price) * 100 / *p.OriginalPrice)
}

// Category groups products. ProductCount is computed on read.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"product_count"`
}
