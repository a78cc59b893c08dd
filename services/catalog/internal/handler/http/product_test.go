package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzron/ecom-sub002/pkg/health"
	"github.com/pzron/ecom-sub002/services/catalog/internal/repository/postgres"
	"github.com/pzron/ecom-sub002/services/catalog/internal/service"
)

var productCols = []string{
	"id", "name", "slug", "description", "category", "price", "original_price",
	"image_url", "rating", "in_stock", "created_at", "updated_at",
}

func row(id, name string, price int64) []any {
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return []any{id, name, "slug-" + id, "", "Books", price, (*int64)(nil), "", 4.0, true, ts, ts}
}

func setup(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	svc := service.NewCatalogService(postgres.NewProductRepository(mock), postgres.NewCategoryRepository(mock), logger)
	return NewRouter(svc, health.NewHandler(), []string{"*"}, logger), mock
}

func serve(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestListProducts_Paginated(t *testing.T) {
	h, mock := setup(t)

	mock.ExpectQuery("FROM products").
		WithArgs("Books", 2, 2).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")).
			AddRow(append(row("p-3", "Dune", 1299), 5)...).
			AddRow(append(row("p-4", "Emma", 899), 5)...))

	rec, body := serve(t, h, http.MethodGet, "/api/v1/products?category=Books&page=2&per_page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["items"], 2)
	assert.Equal(t, float64(5), data["total_count"])
	assert.Equal(t, float64(3), data["total_pages"])
	assert.Equal(t, true, data["has_next"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_ByIDs(t *testing.T) {
	h, mock := setup(t)

	mock.ExpectQuery("WHERE id = ANY").
		WithArgs([]string{"p-2", "p-1"}).
		WillReturnRows(pgxmock.NewRows(productCols).
			AddRow(row("p-1", "Atlas", 500)...).
			AddRow(row("p-2", "Beacon", 700)...))

	rec, body := serve(t, h, http.MethodGet, "/api/v1/products?ids=p-2,%20p-1,", "")

	require.Equal(t, http.StatusOK, rec.Code)
	items := body["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "p-2", items[0].(map[string]any)["id"])
}

func TestListProducts_BadInStock(t *testing.T) {
	h, _ := setup(t)

	rec, body := serve(t, h, http.MethodGet, "/api/v1/products?in_stock=maybe", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", body["error"].(map[string]any)["code"])
}

func TestGetProduct(t *testing.T) {
	h, mock := setup(t)

	mock.ExpectQuery("WHERE id = \\$1").WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(row("p-1", "Atlas", 500)...))
	mock.ExpectQuery("WHERE id = \\$1").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	rec, body := serve(t, h, http.MethodGet, "/api/v1/products/p-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Atlas", body["data"].(map[string]any)["name"])

	rec, body = serve(t, h, http.MethodGet, "/api/v1/products/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestCreateProduct(t *testing.T) {
	h, mock := setup(t)

	mock.ExpectExec("INSERT INTO products").
		WithArgs(pgxmock.AnyArg(), "Trail Shoes", pgxmock.AnyArg(), "", "Sports", int64(8999), (*int64)(nil),
			"", 0.0, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec, body := serve(t, h, http.MethodPost, "/api/v1/products",
		`{"name":"Trail Shoes","category":"Sports","price":8999,"in_stock":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := body["data"].(map[string]any)
	assert.True(t, strings.HasPrefix(data["slug"].(string), "trail-shoes-"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProduct_Validation(t *testing.T) {
	h, _ := setup(t)

	rec, body := serve(t, h, http.MethodPost, "/api/v1/products", `{"name":"","price":-1,"rating":9}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.Contains(t, errBody["fields"], "name")
	assert.Contains(t, errBody["fields"], "rating")
}

func TestListCategories(t *testing.T) {
	h, mock := setup(t)

	mock.ExpectQuery("FROM categories").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug", "product_count"}).
			AddRow("c-1", "Books", "books", 3))

	rec, body := serve(t, h, http.MethodGet, "/api/v1/categories", "")

	require.Equal(t, http.StatusOK, rec.Code)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), items[0].(map[string]any)["product_count"])
}
