package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/checkout"
	"github.com/G77-BOT/aura-flow/internal/domain"
)

// recordingProvider stands in for the payment provider and keeps what it was asked for.
type recordingProvider struct {
	mu       sync.Mutex
	requests []*domain.SessionRequest
}

func (p *recordingProvider) CreateSession(_ context.Context, req *domain.SessionRequest) (*domain.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return &domain.CheckoutSession{
		ID:          "cs_test_1",
		RedirectURL: "https://checkout.stripe.com/c/pay/cs_test_1",
	}, nil
}

func (p *recordingProvider) RetrieveSession(_ context.Context, id string) (*domain.CheckoutSession, error) {
	if id != "cs_test_1" {
		return nil, checkout.ErrSessionNotFound
	}
	return &domain.CheckoutSession{
		ID:            id,
		Status:        domain.SessionStatusComplete,
		PaymentStatus: "paid",
		AmountTotal:   8999,
		Currency:      domain.Currency,
		LineItems:     []domain.LineItem{{Currency: domain.Currency, ProductName: "Celestial Moon Yoga Mat", UnitAmountMinorUnits: 8999, Quantity: 1}},
	}, nil
}

func (p *recordingProvider) last() *domain.SessionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return nil
	}
	return p.requests[len(p.requests)-1]
}

func newTestServer(t *testing.T, cat catalog.Catalog) (*httptest.Server, *recordingProvider) {
	t.Helper()
	provider := &recordingProvider{}
	svc := checkout.NewService(cat, provider, nil, checkout.DefaultConfig())

	router := NewRouter(RouterConfig{
		Checkout: NewCheckoutHandler(svc, 5*time.Second, 1<<20, false),
		Products: NewProductHandler(cat),
		Config: NewConfigHandler("pk_test_123", map[int64]string{
			5: "https://buy.stripe.com/test_5",
		}, decimal.NewFromInt(10)),
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		RequestTimeout: 10 * time.Second,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, provider
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_CreateCheckoutSession(t *testing.T) {
	srv, provider := newTestServer(t, catalog.Default())

	resp := postJSON(t, srv.URL+"/api/create-checkout-session", `{"cartEntries":[{"productId":5,"quantity":1}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body CreateSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "cs_test_1", body.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", body.URL)

	req := provider.last()
	require.NotNil(t, req)
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, int64(8999), req.LineItems[0].UnitAmountMinorUnits)
	assert.Equal(t, srv.URL+"/success.html?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, srv.URL+"/cancel.html", req.CancelURL)
	assert.Equal(t, []string{srv.URL + "/yoga-mat-1.png"}, req.LineItems[0].ProductImageURLs)
}

func TestRouter_ClientPriceIsIgnored(t *testing.T) {
	srv, provider := newTestServer(t, catalog.Default())

	resp := postJSON(t, srv.URL+"/api/create-checkout-session",
		`{"items":[{"id":6,"name":"Eco-Friendly Cork Mat","price":0.01,"quantity":1}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := provider.last()
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, int64(9550), req.LineItems[0].UnitAmountMinorUnits)
}

func TestRouter_ByValueRejectedByDefault(t *testing.T) {
	srv, provider := newTestServer(t, catalog.Default())

	resp := postJSON(t, srv.URL+"/api/create-checkout-session",
		`{"lineItems":[{"currency":"usd","productName":"Celestial Moon Yoga Mat","unitAmountMinorUnits":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, provider.last())
}

func TestRouter_UnknownEntriesDropped(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Terracotta Sun Bikini", UnitPriceMinorUnits: 5999, ImageRef: "bikini-1.png", InStock: true},
	}
	cat, err := catalog.NewMemory(products)
	require.NoError(t, err)
	srv, provider := newTestServer(t, cat)

	resp := postJSON(t, srv.URL+"/api/create-checkout-session",
		`{"cartEntries":[{"productId":1,"quantity":1},{"productId":999,"quantity":1}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := provider.last()
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, "Terracotta Sun Bikini", req.LineItems[0].ProductName)
	assert.Equal(t, int64(5999), req.LineItems[0].UnitAmountMinorUnits)
}

func TestRouter_OnlyOutOfStockIsEmpty(t *testing.T) {
	srv, provider := newTestServer(t, catalog.Default())

	resp := postJSON(t, srv.URL+"/api/create-checkout-session", `{"cartEntries":[{"productId":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "No valid items in the cart to check out.", body.Error)
	assert.Nil(t, provider.last())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, catalog.Default())

	resp, err := http.Get(srv.URL + "/api/create-checkout-session")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST", resp.Header.Get("Allow"))

	resp2 := postJSON(t, srv.URL+"/api/checkout-session?session_id=cs_test_1", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
	assert.Equal(t, "GET", resp2.Header.Get("Allow"))
}

func TestRouter_RetrieveSession(t *testing.T) {
	srv, _ := newTestServer(t, catalog.Default())

	resp, err := http.Get(srv.URL + "/api/checkout-session?session_id=cs_test_1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session domain.CheckoutSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, domain.SessionStatusComplete, session.Status)
	assert.Equal(t, int64(8999), session.AmountTotal)
	require.Len(t, session.LineItems, 1)

	missing, err := http.Get(srv.URL + "/api/checkout-session?session_id=cs_unknown")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestRouter_Products(t *testing.T) {
	srv, _ := newTestServer(t, catalog.Default())

	resp, err := http.Get(srv.URL + "/api/products?category=yoga%20mats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list ProductsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Products, 2)
	assert.Equal(t, int64(5), list.Products[0].ID)
	assert.Equal(t, int64(8999), list.Products[0].PriceMinorUnits)
	assert.True(t, list.Products[0].Price.Equal(decimal.RequireFromString("89.99")))

	one, err := http.Get(srv.URL + "/api/products/1")
	require.NoError(t, err)
	defer one.Body.Close()
	var p ProductResponse
	require.NoError(t, json.NewDecoder(one.Body).Decode(&p))
	assert.False(t, p.InStock)
	assert.Equal(t, "https://www.amazon.com/s?k=terracotta+bikini", p.MarketplaceURL)

	for path, status := range map[string]int{
		"/api/products/999": http.StatusNotFound,
		"/api/products/abc": http.StatusBadRequest,
		"/api/products/0":   http.StatusBadRequest,
	} {
		r, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		r.Body.Close()
		assert.Equal(t, status, r.StatusCode, path)
	}
}

func TestRouter_Config(t *testing.T) {
	srv, _ := newTestServer(t, catalog.Default())

	resp, err := http.Get(srv.URL + "/api/config")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk_")

	var cfg ConfigResponse
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Equal(t, "pk_test_123", cfg.PublishableKey)
	assert.Equal(t, map[string]string{"5": "https://buy.stripe.com/test_5"}, cfg.PaymentLinks)
	assert.Equal(t, "usd", cfg.Currency)
	assert.True(t, cfg.TaxPercent.Equal(decimal.NewFromInt(10)))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, catalog.Default())

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_ = postJSON(t, srv.URL+"/api/create-checkout-session", `{"cartEntries":[{"productId":5}]}`)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	raw, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `http_requests_total{method="POST",path="/api/create-checkout-session",status="200"}`))
}

func TestRouter_PropagatesRequestID(t *testing.T) {
	srv, _ := newTestServer(t, catalog.Default())

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
}
