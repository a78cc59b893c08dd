package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pzron/ecom-sub002/pkg/errors"
	"github.com/pzron/ecom-sub002/pkg/pagination"
	"github.com/pzron/ecom-sub002/services/catalog/internal/domain"
	"github.com/pzron/ecom-sub002/services/catalog/internal/repository"
)

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) Ensure(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func newTestService() (*CatalogService, *mockProductRepo, *mockCategoryRepo) {
	products, categories := &mockProductRepo{}, &mockCategoryRepo{}
	svc := NewCatalogService(products, categories, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	svc.now = func() time.Time { return time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) }
	return svc, products, categories
}

func TestListProducts_BuildsFilter(t *testing.T) {
	svc, products, _ := newTestService()
	ctx := context.Background()

	products.On("List", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Category != nil && *f.Category == "Books" && f.Search == nil && f.Page == 2 && f.PerPage == 10
	})).Return([]domain.Product{{ID: "p-1"}}, 11, nil)

	res, err := svc.ListProducts(ctx, ListProductsInput{
		Category: " Books ",
		Search:   "  ",
		Page:     pagination.Params{Page: 2, PerPage: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, 11, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
	assert.False(t, res.HasNext)
	products.AssertExpectations(t)
}

func TestListProducts_RepoError(t *testing.T) {
	svc, products, _ := newTestService()
	products.On("List", mock.Anything, mock.Anything).Return([]domain.Product(nil), 0, errors.New("db down"))

	_, err := svc.ListProducts(context.Background(), ListProductsInput{Page: pagination.Params{Page: 1, PerPage: 20}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetProduct(t *testing.T) {
	svc, products, _ := newTestService()
	products.On("GetByID", mock.Anything, "p-1").Return(&domain.Product{ID: "p-1"}, nil)

	p, err := svc.GetProduct(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)

	_, err = svc.GetProduct(context.Background(), " ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestListProductsByIDs_Limit(t *testing.T) {
	svc, _, _ := newTestService()

	ids := make([]string, MaxIDsPerLookup+1)
	_, err := svc.ListProductsByIDs(context.Background(), ids)

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCreateProduct(t *testing.T) {
	svc, products, _ := newTestService()
	products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	p, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Café Espresso Machine",
		Category: "Home & Kitchen",
		Price:    12999,
		InStock:  true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, strings.HasPrefix(p.Slug, "cafe-espresso-machine-"))
	assert.Equal(t, svc.now(), p.CreatedAt)
	products.AssertExpectations(t)
}

func TestCreateProduct_Rejects(t *testing.T) {
	svc, products, _ := newTestService()
	lower := int64(100)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Lamp", Price: 500, OriginalPrice: &lower})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "!!!", Price: 500})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSeedCategories(t *testing.T) {
	svc, _, categories := newTestService()
	categories.On("Ensure", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Home & Kitchen" && c.Slug == "home-and-kitchen" && c.ID != ""
	})).Return(nil).Once()
	categories.On("Ensure", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Books" && c.Slug == "books"
	})).Return(nil).Once()

	require.NoError(t, svc.SeedCategories(context.Background(), []string{"Home & Kitchen", "", "Books"}))
	categories.AssertExpectations(t)
}

func TestSeedCategories_StopsOnError(t *testing.T) {
	svc, _, categories := newTestService()
	categories.On("Ensure", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

	err := svc.SeedCategories(context.Background(), []string{"Books", "Sports"})

	require.Error(t, err)
	categories.AssertNumberOfCalls(t, "Ensure", 1)
}
