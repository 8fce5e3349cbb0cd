package checkout

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

var (
	ErrMalformedRequest = errors.New("malformed checkout request")
	ErrValidationFailed = errors.New("line item validation failed")
	ErrUpstreamFailure  = errors.New("payment provider request failed")
	ErrSessionNotFound  = errors.New("checkout session not found")
)

// ErrEmptyCart is a malformed request: nothing purchasable remained after building line items.
var ErrEmptyCart = fmt.Errorf("cart is empty, nothing to checkout: %w", ErrMalformedRequest)

// ValidationError lists every problem found in a by-value request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// UpstreamError wraps a failed provider call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFailure
}

// ProviderError carries the provider's own diagnostic.
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// ProviderMessage extracts the provider's message from err, falling back to
// the innermost cause of an upstream failure.
func ProviderMessage(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
