// Package payment adapts Stripe Checkout to the checkout.Provider contract.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"

	"github.com/G77-BOT/aura-flow/internal/checkout"
	"github.com/G77-BOT/aura-flow/internal/domain"
	"github.com/G77-BOT/aura-flow/pkg/circuitbreaker"
)

var retrieveExpansions = []string{
	"line_items.data.price.product",
	"payment_intent",
}

type Config struct {
	SecretKey string
	// BackendURL overrides the Stripe API host.
	BackendURL string
	HTTPClient *http.Client
	Breaker    circuitbreaker.Config
	Logger     *slog.Logger
}

type StripeProvider struct {
	client  session.Client
	breaker *circuitbreaker.Breaker[*stripe.CheckoutSession]
	logger  *slog.Logger
}

func NewStripeProvider(cfg Config) *StripeProvider {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	backendCfg := &stripe.BackendConfig{
		// one attempt per request; the shopper retries by resubmitting
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &leveledLogger{logger: log},
	}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripe.String(cfg.BackendURL)
	}
	if cfg.HTTPClient != nil {
		backendCfg.HTTPClient = cfg.HTTPClient
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "stripe"
	}
	breakerCfg.Logger = log
	breakerCfg.IsSuccessful = isCallerError

	return &StripeProvider{
		client: session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		breaker: circuitbreaker.New[*stripe.CheckoutSession](breakerCfg),
		logger:  log,
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req *domain.SessionRequest) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItemParams(req.LineItems),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	start := time.Now()
	s, err := p.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return p.client.New(params)
	})
	if err != nil {
		return nil, mapError(err)
	}
	p.logger.DebugContext(ctx, "stripe session created", "session_id", s.ID, "duration", time.Since(start))

	return &domain.CheckoutSession{
		ID:          s.ID,
		RedirectURL: s.URL,
		Status:      domain.SessionStatus(s.Status),
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
		LineItems:   req.LineItems,
	}, nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	for _, e := range retrieveExpansions {
		params.AddExpand(e)
	}
	params.Context = ctx

	s, err := p.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return p.client.Get(id, params)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toDomainSession(s), nil
}

func lineItemParams(items []domain.LineItem) []*stripe.CheckoutSessionLineItemParams {
	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		li := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(item.UnitAmountMinorUnits),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.ProductName),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		}
		if len(item.ProductImageURLs) > 0 {
			li.PriceData.ProductData.Images = stripe.StringSlice(item.ProductImageURLs)
		}
		out = append(out, li)
	}
	return out
}

func toDomainSession(s *stripe.CheckoutSession) *domain.CheckoutSession {
	out := &domain.CheckoutSession{
		ID:                 s.ID,
		RedirectURL:        s.URL,
		Mode:               string(s.Mode),
		Status:             domain.SessionStatus(s.Status),
		PaymentStatus:      string(s.PaymentStatus),
		PaymentMethodTypes: s.PaymentMethodTypes,
		AmountSubtotal:     s.AmountSubtotal,
		AmountTotal:        s.AmountTotal,
		Currency:           string(s.Currency),
		CustomerEmail:      s.CustomerEmail,
		CreatedAt:          s.Created,
		ExpiresAt:          s.ExpiresAt,
		LineItems:          []domain.LineItem{},
	}
	if s.CustomerDetails != nil {
		if s.CustomerDetails.Email != "" {
			out.CustomerEmail = s.CustomerDetails.Email
		}
		out.CustomerName = s.CustomerDetails.Name
	}
	if s.TotalDetails != nil {
		out.TotalDetails = &domain.TotalDetails{
			AmountDiscount: s.TotalDetails.AmountDiscount,
			AmountShipping: s.TotalDetails.AmountShipping,
			AmountTax:      s.TotalDetails.AmountTax,
		}
	}
	if s.PaymentIntent != nil {
		out.PaymentIntent = &domain.PaymentIntent{
			ID:     s.PaymentIntent.ID,
			Status: string(s.PaymentIntent.Status),
		}
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			out.LineItems = append(out.LineItems, toDomainLineItem(li))
		}
	}
	return out
}

func toDomainLineItem(li *stripe.LineItem) domain.LineItem {
	item := domain.LineItem{
		Currency:    string(li.Currency),
		ProductName: li.Description,
		Quantity:    li.Quantity,
	}
	if li.Price != nil {
		item.UnitAmountMinorUnits = li.Price.UnitAmount
		if li.Price.Product != nil {
			if li.Price.Product.Name != "" {
				item.ProductName = li.Price.Product.Name
			}
			item.ProductImageURLs = li.Price.Product.Images
		}
	}
	return item
}

func isNotFound(err error) bool {
	var se *stripe.Error
	return errors.As(err, &se) && se.Code == stripe.ErrorCodeResourceMissing
}

// isCallerError reports failures caused by the request or its caller rather
// than by Stripe itself. They do not count against the breaker.
func isCallerError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var se *stripe.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.HTTPStatusCode == http.StatusTooManyRequests {
		return false
	}
	return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500
}

func mapError(err error) error {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return &checkout.ProviderError{
			Code:       "circuit_open",
			Message:    "payment provider temporarily unavailable",
			StatusCode: http.StatusServiceUnavailable,
		}
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %v", checkout.ErrSessionNotFound, err)
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return &checkout.ProviderError{
			Code:       string(se.Code),
			Message:    se.Msg,
			StatusCode: se.HTTPStatusCode,
		}
	}
	return err
}
