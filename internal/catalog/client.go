package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"order-engine/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is the HTTP adapter for the external product catalog. The
// engine only needs one narrow call: price and activity flag by id.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type productResponse struct {
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

// GetProduct returns nil (no error) when the catalog has no such
// product.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*service.ProductInfo, error) {
	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("catalog returned status %d for product %s", resp.StatusCode, id)
	}

	var body productResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return &service.ProductInfo{Price: body.Price, IsActive: body.IsActive}, nil
}
