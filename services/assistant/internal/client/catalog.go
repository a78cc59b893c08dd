package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pzron/ecom-sub002/pkg/httpclient"
	"github.com/pzron/ecom-sub002/pkg/pagination"
	"github.com/pzron/ecom-sub002/services/assistant/internal/domain"
)

// CatalogClient reads products from the catalog service.
type CatalogClient struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
}

// NewCatalogClient creates a CatalogClient for the catalog service at baseURL.
func NewCatalogClient(baseURL string, hc *httpclient.CircuitBreakerClient) *CatalogClient {
	return &CatalogClient{http: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

type productPage struct {
	Data struct {
		Items []domain.ProductContext `json:"items"`
	} `json:"data"`
}

// ListProducts returns up to limit products, newest first. limit is clamped
// to the catalog's page size bounds.
func (c *CatalogClient) ListProducts(ctx context.Context, limit int) ([]domain.ProductContext, error) {
	limit = min(max(limit, 1), pagination.MaxPerPage)
	resp, err := c.http.Get(ctx, fmt.Sprintf("%s/api/v1/products?page=1&per_page=%d", c.baseURL, limit))
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}
	defer func() { _ = resp.Body.Close() }()

	var page productPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode catalog products: %w", err)
	}
	return page.Data.Items, nil
}
