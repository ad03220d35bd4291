package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Aleksandergreg/storefront/app/models"
	"github.com/Aleksandergreg/storefront/pkg/http"
	"github.com/Aleksandergreg/storefront/pkg/response"
)

// CatalogService talks to the commerce catalog's store API. Products are
// read-only here — the storefront never writes to the catalog.
type CatalogService struct {
	baseURL string
	apiKey  string // sent as x-publishable-api-key
}

func NewCatalogService(baseURL, apiKey string) *CatalogService {
	return &CatalogService{baseURL: baseURL, apiKey: apiKey}
}

type productListResponse struct {
	Products []models.Product `json:"products"`
	Count    int64            `json:"count"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

type productResponse struct {
	Product models.Product `json:"product"`
}

// ListProducts fetches a page of products. q filters by title when non-empty.
func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int, q string) ([]models.Product, response.Pagination, error) {
	if limit <= 0 {
		limit = 20
	}

	req := http.Get(s.baseURL+"/store/products").
		Header("x-publishable-api-key", s.apiKey).
		Query("limit", strconv.Itoa(limit)).
		Query("offset", strconv.Itoa(offset)).
		WithContext(ctx).
		Timeout(10 * time.Second).
		Retry(3, 500*time.Millisecond)
	if q != "" {
		req.Query("q", q)
	}

	resp, err := req.Send()
	if err != nil {
		return nil, response.Pagination{}, fmt.Errorf("catalog: list products: %w", errors.Join(ErrUpstream, err))
	}
	if err := resp.Throw(); err != nil {
		return nil, response.Pagination{}, fmt.Errorf("catalog: list products: %w", errors.Join(ErrUpstream, err))
	}

	var body productListResponse
	if err := resp.JSON(&body); err != nil {
		return nil, response.Pagination{}, fmt.Errorf("catalog: decode products: %w", err)
	}

	page := response.Pagination{Count: body.Count, Offset: body.Offset, Limit: body.Limit}
	return body.Products, page, nil
}

// GetProduct fetches a single product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	resp, err := http.Get(s.baseURL+"/store/products/"+id).
		Header("x-publishable-api-key", s.apiKey).
		WithContext(ctx).
		Timeout(10 * time.Second).
		Retry(3, 500*time.Millisecond).
		Send()
	if err != nil {
		return models.Product{}, fmt.Errorf("catalog: get product %s: %w", id, errors.Join(ErrUpstream, err))
	}
	// An unknown id is not an outage: the catalog answered, there is just no
	// such product.
	if resp.StatusCode == 404 {
		return models.Product{}, fmt.Errorf("catalog: get product %s: %w", id, ErrNoResults)
	}
	if err := resp.Throw(); err != nil {
		return models.Product{}, fmt.Errorf("catalog: get product %s: %w", id, errors.Join(ErrUpstream, err))
	}

	var body productResponse
	if err := resp.JSON(&body); err != nil {
		return models.Product{}, fmt.Errorf("catalog: decode product: %w", err)
	}
	return body.Product, nil
}
