package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G77-BOT/aura-flow/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "Yoga Mats", r.URL.Query().Get("category"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":5,"name":"Celestial Moon Yoga Mat","category":"Yoga Mats","price":"89.99","priceMinorUnits":8999,"image":"yoga-mat-1.png","inStock":true}]}`))
	})

	products, err := c.Products(context.Background(), "Yoga Mats")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.Product{
		ID:                  5,
		Name:                "Celestial Moon Yoga Mat",
		Category:            "Yoga Mats",
		UnitPriceMinorUnits: 8999,
		ImageRef:            "yoga-mat-1.png",
		InStock:             true,
	}, products[0])
}

func TestPaymentLinks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/config", r.URL.Path)
		_, _ = w.Write([]byte(`{"publishableKey":"pk_test","paymentLinks":{"5":"https://buy.stripe.com/a","6":"https://buy.stripe.com/b"},"taxPercent":"10","currency":"usd"}`))
	})

	links, err := c.PaymentLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{5: "https://buy.stripe.com/a", 6: "https://buy.stripe.com/b"}, links)
}

func TestCreateSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[{"productId":5,"quantity":1}]`, string(body["cartEntries"]))

		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://checkout.stripe.com/c/pay/cs_1"}`))
	})

	resp, err := c.CreateSession(context.Background(), []domain.CartEntry{{ProductID: 5, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", resp.URL)
}

func TestCreateSession_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No valid items in the cart to check out.","code":"empty_cart"}`))
	})

	_, err := c.CreateSession(context.Background(), nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "empty_cart", apiErr.Body.Code)
	assert.Contains(t, err.Error(), "No valid items in the cart to check out.")
}

func TestRetrieveSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cs_1", r.URL.Query().Get("session_id"))
		_, _ = w.Write([]byte(`{"id":"cs_1","status":"complete","paymentStatus":"paid","amountTotal":8999,"currency":"usd","lineItems":[]}`))
	})

	session, err := c.RetrieveSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusComplete, session.Status)
	assert.Equal(t, int64(8999), session.AmountTotal)
}

func TestRetrieveSession_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.RetrieveSession(context.Background(), "cs_1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Body.Error)
}
