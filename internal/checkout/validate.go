package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/G77-BOT/aura-flow/internal/domain"
)

// ValidateLineItems applies the strict by-value schema. It returns a
// *ValidationError naming every violation, or nil.
func ValidateLineItems(items []domain.LineItem) error {
	var problems []string
	for i, item := range items {
		prefix := fmt.Sprintf("lineItems[%d]", i)
		if item.Currency != domain.Currency {
			problems = append(problems, fmt.Sprintf("%s.currency must be %q, got %q", prefix, domain.Currency, item.Currency))
		}
		if strings.TrimSpace(item.ProductName) == "" {
			problems = append(problems, prefix+".productName must not be empty")
		}
		if item.UnitAmountMinorUnits < 0 {
			problems = append(problems, fmt.Sprintf("%s.unitAmountMinorUnits must be non-negative, got %d", prefix, item.UnitAmountMinorUnits))
		}
		if item.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("%s.quantity must be positive, got %d", prefix, item.Quantity))
		}
		for j, raw := range item.ProductImageURLs {
			if !isAbsoluteHTTPURL(raw) {
				problems = append(problems, fmt.Sprintf("%s.productImageURLs[%d] must be an absolute http(s) URL", prefix, j))
			}
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
