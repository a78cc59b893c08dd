package repository

import (
	"context"

	"github.com/pzron/ecom-sub002/services/catalog/internal/domain"
)

// ProductFilter narrows a product listing. Nil fields are not applied.
type ProductFilter struct {
	Category *string
	Search   *string
	InStock  *bool
	Page     int
	PerPage  int
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// ListByIDs returns the products that exist, in the order of ids.
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	// Ensure inserts the category unless one with the same name or slug exists.
	Ensure(ctx context.Context, c *domain.Category) error
}
