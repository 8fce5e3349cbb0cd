package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/G77-BOT/aura-flow/internal/cart"
	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/checkout"
	"github.com/G77-BOT/aura-flow/internal/client"
	"github.com/G77-BOT/aura-flow/internal/domain"
	storehttp "github.com/G77-BOT/aura-flow/internal/http"
)

type stubProvider struct {
	created []*domain.SessionRequest
	status  domain.SessionStatus
}

func (p *stubProvider) CreateSession(_ context.Context, req *domain.SessionRequest) (*domain.CheckoutSession, error) {
	p.created = append(p.created, req)
	return &domain.CheckoutSession{ID: "cs_cli", RedirectURL: "https://checkout.stripe.com/c/pay/cs_cli"}, nil
}

func (p *stubProvider) RetrieveSession(_ context.Context, id string) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{
		ID:            id,
		Status:        p.status,
		PaymentStatus: "paid",
		AmountTotal:   8999,
		LineItems:     []domain.LineItem{{ProductName: "Celestial Moon Yoga Mat", UnitAmountMinorUnits: 8999, Quantity: 1}},
	}, nil
}

func newTestApp(t *testing.T, links map[int64]string) (*app, *stubProvider, *bytes.Buffer) {
	t.Helper()
	cat := catalog.Default()
	provider := &stubProvider{status: domain.SessionStatusComplete}
	svc := checkout.NewService(cat, provider, nil, checkout.DefaultConfig())

	srv := httptest.NewServer(storehttp.NewRouter(storehttp.RouterConfig{
		Checkout: storehttp.NewCheckoutHandler(svc, 5*time.Second, 1<<20, false),
		Products: storehttp.NewProductHandler(cat),
		Config:   storehttp.NewConfigHandler("pk_test", links, decimal.NewFromInt(10)),
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	return &app{
		api:     client.New(srv.URL, 5*time.Second),
		storage: cart.NewMemoryStorage(),
		cartKey: cart.DefaultKey,
		out:     out,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}, provider, out
}

func TestRun_AddAndShowCart(t *testing.T) {
	a, _, out := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"add", "5"}))
	assert.Contains(t, out.String(), "1 item(s), $89.99")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"add", "5"}))
	assert.Contains(t, out.String(), "Item is already in your cart")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"add", "1"}))
	assert.Contains(t, out.String(), "Item is out of stock")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"cart"}))
	assert.Contains(t, out.String(), "Celestial Moon Yoga Mat")
	assert.Contains(t, out.String(), "$89.99")
	assert.Contains(t, out.String(), "$9.00")
	assert.Contains(t, out.String(), "$98.99")
}

func TestRun_CheckoutUsesPaymentLinkForSingleItem(t *testing.T) {
	a, provider, out := newTestApp(t, map[int64]string{5: "https://buy.stripe.com/test_5"})
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"add", "5"}))
	out.Reset()
	require.NoError(t, a.run(ctx, []string{"checkout"}))

	assert.Contains(t, out.String(), "https://buy.stripe.com/test_5")
	assert.Empty(t, provider.created)
}

func TestRun_CheckoutCreatesSession(t *testing.T) {
	a, provider, out := newTestApp(t, map[int64]string{5: "https://buy.stripe.com/test_5"})
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"add", "5"}))
	require.NoError(t, a.run(ctx, []string{"add", "6"}))
	out.Reset()
	require.NoError(t, a.run(ctx, []string{"checkout"}))

	assert.Contains(t, out.String(), "https://checkout.stripe.com/c/pay/cs_cli")
	require.Len(t, provider.created, 1)
	assert.Equal(t, int64(8999+9550), domain.TotalAmount(provider.created[0].LineItems))
}

func TestRun_CompletedSessionClearsCart(t *testing.T) {
	a, _, out := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"add", "6"}))
	out.Reset()
	require.NoError(t, a.run(ctx, []string{"session", "cs_cli"}))
	assert.Contains(t, out.String(), "Session cs_cli: complete")
	assert.Contains(t, out.String(), "Your cart has been cleared.")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"cart"}))
	assert.Contains(t, out.String(), "Your cart is empty.")
}

func TestRun_EmptyCartCheckout(t *testing.T) {
	a, provider, out := newTestApp(t, nil)

	require.NoError(t, a.run(context.Background(), []string{"checkout"}))
	assert.Contains(t, out.String(), "Your cart is empty.")
	assert.Empty(t, provider.created)
}

func TestRun_Products(t *testing.T) {
	a, _, out := newTestApp(t, nil)

	require.NoError(t, a.run(context.Background(), []string{"products", "-category", "Leggings"}))
	assert.Contains(t, out.String(), "Forest Green Leggings")
	assert.Contains(t, out.String(), "https://www.amazon.com/s?k=forest+green+leggings")
	assert.NotContains(t, out.String(), "Yoga Mat")
}

func TestRun_Usage(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	ctx := context.Background()

	assert.True(t, errors.Is(a.run(ctx, nil), errUsage))
	assert.True(t, errors.Is(a.run(ctx, []string{"bogus"}), errUsage))
	assert.True(t, errors.Is(a.run(ctx, []string{"add", "abc"}), errUsage))
	assert.True(t, errors.Is(a.run(ctx, []string{"session"}), errUsage))
}
