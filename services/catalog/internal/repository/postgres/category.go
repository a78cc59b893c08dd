package postgres

import (
	"context"
	"fmt"

	"github.com/pzron/ecom-sub002/pkg/database"
	"github.com/pzron/ecom-sub002/services/catalog/internal/domain"
)

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category with the number of products it holds.
func (r *CategoryRepository) List(ctx context.Context) (_ []domain.Category, err error) {
	query := `
		SELECT c.id, c.name, c.slug, count(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category = c.name
		GROUP BY c.id, c.name, c.slug
		ORDER BY c.name`

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// Ensure inserts c unless a category with the same name or slug exists.
func (r *CategoryRepository) Ensure(ctx context.Context, c *domain.Category) (err error) {
	query := `
		INSERT INTO categories (id, name, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "EnsureCategory", query)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, query, c.ID, c.Name, c.Slug); err != nil {
		return fmt.Errorf("ensure category %s: %w", c.Name, err)
	}
	return nil
}
