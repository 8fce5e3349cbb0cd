// Package client talks to the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/G77-BOT/aura-flow/internal/domain"
	storehttp "github.com/G77-BOT/aura-flow/internal/http"
)

// APIError is a non-2xx answer from the storefront.
type APIError struct {
	StatusCode int
	Body       storehttp.ErrorResponse
}

func (e *APIError) Error() string {
	msg := e.Body.Error
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	return fmt.Sprintf("storefront returned %d: %s", e.StatusCode, msg)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Products lists the catalog, optionally filtered by category.
func (c *Client) Products(ctx context.Context, category string) ([]domain.Product, error) {
	path := "/api/products"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var resp storehttp.ProductsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	products := make([]domain.Product, len(resp.Products))
	for i, p := range resp.Products {
		products[i] = domain.Product{
			ID:                  p.ID,
			Name:                p.Name,
			UnitPriceMinorUnits: p.PriceMinorUnits,
			ImageRef:            p.Image,
			InStock:             p.InStock,
			Category:            p.Category,
			Description:         p.Description,
			MarketplaceURL:      p.MarketplaceURL,
		}
	}
	return products, nil
}

func (c *Client) Config(ctx context.Context) (*storehttp.ConfigResponse, error) {
	var resp storehttp.ConfigResponse
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PaymentLinks converts the published links back to product ids.
func (c *Client) PaymentLinks(ctx context.Context) (map[int64]string, error) {
	cfg, err := c.Config(ctx)
	if err != nil {
		return nil, err
	}
	links := make(map[int64]string, len(cfg.PaymentLinks))
	for key, link := range cfg.PaymentLinks {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("payment link key %q: %w", key, err)
		}
		links[id] = link
	}
	return links, nil
}

// CreateSession sends cart entries by reference and returns the hosted
// checkout id and URL.
func (c *Client) CreateSession(ctx context.Context, entries []domain.CartEntry) (*storehttp.CreateSessionResponse, error) {
	req := storehttp.CreateSessionRequestDTO{CartEntries: entries}
	if req.CartEntries == nil {
		req.CartEntries = []domain.CartEntry{}
	}

	var resp storehttp.CreateSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/create-checkout-session", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RetrieveSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	var resp domain.CheckoutSession
	if err := c.do(ctx, http.MethodGet, "/api/checkout-session?session_id="+url.QueryEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call storefront: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, &apiErr.Body); err != nil {
			apiErr.Body.Error = string(bytes.TrimSpace(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
