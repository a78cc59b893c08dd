package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/pkg/logger"
	"github.com/pzron/ecom-sub002/pkg/pagination"
	"github.com/pzron/ecom-sub002/pkg/slug"
	"github.com/pzron/ecom-sub002/services/catalog/internal/domain"
	"github.com/pzron/ecom-sub002/services/catalog/internal/repository"
)

// MaxIDsPerLookup bounds ListProductsByIDs.
const MaxIDsPerLookup = 100

// CatalogService implements product and category reads plus product creation.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListProductsInput narrows a product listing.
type ListProductsInput struct {
	Category string
	Search   string
	InStock  *bool
	Page     pagination.Params
}

// ListProducts returns one page of products.
func (s *CatalogService) ListProducts(ctx context.Context, in ListProductsInput) (pagination.Result[domain.Product], error) {
	filter := repository.ProductFilter{
		InStock: in.InStock,
		Page:    in.Page.Page,
		PerPage: in.Page.PerPage,
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		filter.Category = &c
	}
	if q := strings.TrimSpace(in.Search); q != "" {
		filter.Search = &q
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(products, total, in.Page), nil
}

// GetProduct returns a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	return s.products.GetByID(ctx, id)
}

// ListProductsByIDs returns the known products among ids, in request order.
func (s *CatalogService) ListProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) > MaxIDsPerLookup {
		return nil, apperrors.InvalidInput(fmt.Sprintf("at most %d ids may be requested", MaxIDsPerLookup))
	}
	return s.products.ListByIDs(ctx, ids)
}

// ListCategories returns all categories with product counts.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Category      string
	Price         int64
	OriginalPrice *int64
	ImageURL      string
	Rating        float64
	InStock       bool
}

// CreateProduct stores a new product with a generated id and slug.
func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if in.OriginalPrice != nil && *in.OriginalPrice < in.Price {
		return nil, apperrors.InvalidInput("original price must not be below price")
	}

	id := uuid.New().String()
	productSlug := slug.Generate(in.Name)
	if productSlug == "" {
		return nil, apperrors.InvalidInput("product name must contain letters or digits")
	}

	// The id suffix keeps slugs unique across products sharing a name.
	productSlug += "-" + id[:8]

	now := s.now()
	p := &domain.Product{
		ID:            id,
		Name:          in.Name,
		Slug:          productSlug,
		Description:   in.Description,
		Category:      in.Category,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		ImageURL:      in.ImageURL,
		Rating:        in.Rating,
		InStock:       in.InStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("category", p.Category),
	)
	return p, nil
}

// SeedCategories makes sure every named category exists.
func (s *CatalogService) SeedCategories(ctx context.Context, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c := &domain.Category{ID: uuid.New().String(), Name: name, Slug: slug.Generate(name)}
		if err := s.categories.Ensure(ctx, c); err != nil {
			return err
		}
	}
	s.logger.InfoContext(ctx, "categories seeded", slog.Int("count", len(names)))
	return nil
}
