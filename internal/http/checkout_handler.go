package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/G77-BOT/aura-flow/internal/checkout"
	"github.com/G77-BOT/aura-flow/internal/domain"
	"github.com/G77-BOT/aura-flow/pkg/logger"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, req checkout.CreateRequest) (*domain.CheckoutSession, error)
	RetrieveSession(ctx context.Context, id string) (*domain.CheckoutSession, error)
}

type CheckoutHandler struct {
	service      CheckoutService
	timeout      time.Duration
	maxBodyBytes int64
	// production hides stack traces from error responses
	production bool
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration, maxBodyBytes int64, production bool) *CheckoutHandler {
	return &CheckoutHandler{
		service:      service,
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
		production:   production,
	}
}

// CreateSessionRequestDTO accepts cartEntries or lineItems. The older
// storefront bodies {cart:[...]} and {items:[...]} are read as references;
// any price they carry is ignored.
type CreateSessionRequestDTO struct {
	CartEntries []domain.CartEntry  `json:"cartEntries"`
	LineItems   []domain.LineItem   `json:"lineItems"`
	Cart        []LegacyCartItemDTO `json:"cart"`
	Items       []LegacyCartItemDTO `json:"items"`
}

type LegacyCartItemDTO struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type CreateSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (d CreateSessionRequestDTO) cartEntries() []domain.CartEntry {
	if d.CartEntries == nil && d.Cart == nil && d.Items == nil {
		return nil
	}
	entries := make([]domain.CartEntry, 0, len(d.CartEntries)+len(d.Cart)+len(d.Items))
	entries = append(entries, d.CartEntries...)
	for _, legacy := range append(d.Cart, d.Items...) {
		entries = append(entries, domain.CartEntry{ProductID: legacy.ID, Quantity: legacy.Quantity})
	}
	return entries
}

func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "malformed_request", "Cart is empty or invalid.")
		return
	}

	session, err := h.service.CreateSession(ctx, checkout.CreateRequest{
		CartEntries: req.cartEntries(),
		LineItems:   req.LineItems,
		BaseURL:     baseURL(r),
	})
	if err != nil {
		h.handleError(ctx, w, err, "Failed to create checkout session")
		return
	}

	respondJSON(w, http.StatusOK, CreateSessionResponse{ID: session.ID, URL: session.RedirectURL})
}

func (h *CheckoutHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "malformed_request", "Session ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.RetrieveSession(ctx, sessionID)
	if err != nil {
		h.handleError(ctx, w, err, "Failed to retrieve checkout session")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) handleError(ctx context.Context, w http.ResponseWriter, err error, upstreamMessage string) {
	var ve *checkout.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Line items failed validation.",
			Code:    "validation_failed",
			Details: ve.Problems,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "No valid items in the cart to check out.")
	case errors.Is(err, checkout.ErrMalformedRequest):
		respondError(w, http.StatusBadRequest, "malformed_request", "Cart is empty or invalid.")
	case errors.Is(err, checkout.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Checkout session not found")
	default:
		logger.FromContext(ctx).ErrorContext(ctx, "checkout request failed", "error", err)
		resp := ErrorResponse{
			Error:     upstreamMessage,
			Code:      "upstream_failure",
			Message:   checkout.ProviderMessage(err),
			RequestID: getRequestID(ctx),
		}
		if !h.production {
			resp.Stack = stackTrace(err)
		}
		respondJSON(w, http.StatusInternalServerError, resp)
	}
}

// baseURL is the absolute origin the shopper used, honouring the first
// X-Forwarded-Proto value set by a proxy.
func baseURL(r *http.Request) string {
	scheme := "http"
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		first := strings.ToLower(strings.TrimSpace(strings.Split(fwd, ",")[0]))
		if first == "http" || first == "https" {
			scheme = first
		}
	}
	return scheme + "://" + r.Host
}
