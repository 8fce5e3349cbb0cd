// Package checkout turns a cart into a hosted checkout session at the payment
// provider and reads sessions back for the confirmation page.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"

	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/domain"
	"github.com/G77-BOT/aura-flow/pkg/logger"
)

// SessionIDPlaceholder is substituted by the provider with the real session id.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// Provider is the remote payment service.
type Provider interface {
	CreateSession(ctx context.Context, req *domain.SessionRequest) (*domain.CheckoutSession, error)
	RetrieveSession(ctx context.Context, id string) (*domain.CheckoutSession, error)
}

// EventPublisher announces created sessions. Failures never fail checkout.
type EventPublisher interface {
	SessionCreated(ctx context.Context, session *domain.CheckoutSession) error
}

type Config struct {
	SuccessPath  string
	CancelPath   string
	AllowByValue bool
	// RetrieveTimeout bounds a shared retrieval, which outlives any single caller.
	RetrieveTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		SuccessPath:     "/success.html",
		CancelPath:      "/cancel.html",
		RetrieveTimeout: 15 * time.Second,
	}
}

// CreateRequest carries exactly one of CartEntries (by reference) or
// LineItems (by value). BaseURL is the absolute origin of the storefront.
type CreateRequest struct {
	CartEntries []domain.CartEntry
	LineItems   []domain.LineItem
	BaseURL     string
}

type Service struct {
	catalog   catalog.Catalog
	provider  Provider
	publisher EventPublisher
	cfg       Config
	sfg       singleflight.Group
}

func NewService(cat catalog.Catalog, provider Provider, publisher EventPublisher, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.SuccessPath == "" {
		cfg.SuccessPath = def.SuccessPath
	}
	if cfg.CancelPath == "" {
		cfg.CancelPath = def.CancelPath
	}
	if cfg.RetrieveTimeout <= 0 {
		cfg.RetrieveTimeout = def.RetrieveTimeout
	}
	return &Service{
		catalog:   cat,
		provider:  provider,
		publisher: publisher,
		cfg:       cfg,
	}
}

// CreateSession builds line items, asks the provider for a session and
// returns its id and hosted redirect URL. Each call creates a new session.
func (s *Service) CreateSession(ctx context.Context, req CreateRequest) (*domain.CheckoutSession, error) {
	log := logger.FromContext(ctx)

	base := strings.TrimRight(strings.TrimSpace(req.BaseURL), "/")
	if !isAbsoluteHTTPURL(base) {
		return nil, errors.Wrapf(ErrMalformedRequest, "base url %q is not absolute", req.BaseURL)
	}

	items, source, err := s.lineItems(ctx, req, base)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	sessionReq := &domain.SessionRequest{
		LineItems:  items,
		SuccessURL: base + s.cfg.SuccessPath + "?session_id=" + SessionIDPlaceholder,
		CancelURL:  base + s.cfg.CancelPath,
	}

	session, err := s.provider.CreateSession(ctx, sessionReq)
	if err != nil {
		providerFailures.WithLabelValues("create").Inc()
		log.ErrorContext(ctx, "provider create session failed", "error", err, "line_items", len(items))
		return nil, errors.Wrap(&UpstreamError{Op: "create session", Err: err}, "create checkout session")
	}
	sessionsCreated.WithLabelValues(source).Inc()
	log.InfoContext(ctx, "checkout session created",
		"session_id", session.ID,
		"line_items", len(items),
		"amount_total", domain.TotalAmount(items),
	)

	if s.publisher != nil {
		if err := s.publisher.SessionCreated(ctx, session); err != nil {
			log.WarnContext(ctx, "publish session created event failed", "session_id", session.ID, "error", err)
		}
	}

	return session, nil
}

func (s *Service) lineItems(ctx context.Context, req CreateRequest, base string) ([]domain.LineItem, string, error) {
	byRef := req.CartEntries != nil
	byValue := req.LineItems != nil

	switch {
	case byRef && byValue:
		return nil, "", errors.Wrap(ErrMalformedRequest, "send either cartEntries or lineItems, not both")
	case !byRef && !byValue:
		return nil, "", errors.Wrap(ErrMalformedRequest, "request has no cart entries")
	case byValue:
		if !s.cfg.AllowByValue {
			return nil, "", &ValidationError{Problems: []string{"lineItems are not accepted; send cartEntries"}}
		}
		if err := ValidateLineItems(req.LineItems); err != nil {
			return nil, "", err
		}
		logger.FromContext(ctx).WarnContext(ctx, "accepting client-priced line items", "line_items", len(req.LineItems))
		return req.LineItems, "by_value", nil
	}

	items, dropped := BuildLineItems(s.catalog, req.CartEntries, base)
	for _, d := range dropped {
		entriesDropped.WithLabelValues(string(d.Reason)).Inc()
		logger.FromContext(ctx).WarnContext(ctx, "dropping cart entry", "product_id", d.ProductID, "reason", d.Reason)
	}
	return items, "by_reference", nil
}

// RetrieveSession fetches session detail with line items and payment intent
// expanded. Concurrent calls for the same id share one provider round trip.
func (s *Service) RetrieveSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.Wrap(ErrMalformedRequest, "session id is required")
	}

	// The shared call must not die with whichever caller started it.
	ch := s.sfg.DoChan(id, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RetrieveTimeout)
		defer cancel()
		return s.provider.RetrieveSession(callCtx, id)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "retrieve session %s", id)
	}

	v, err := res.Val, res.Err
	if errors.Is(err, ErrSessionNotFound) {
		return nil, errors.Wrapf(err, "retrieve session %s", id)
	}
	if err != nil {
		providerFailures.WithLabelValues("retrieve").Inc()
		logger.FromContext(ctx).ErrorContext(ctx, "provider retrieve session failed", "session_id", id, "error", err)
		return nil, errors.Wrap(&UpstreamError{Op: "retrieve session", Err: err}, "retrieve checkout session")
	}
	return v.(*domain.CheckoutSession), nil
}
