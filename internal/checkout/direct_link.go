package checkout

import "github.com/G77-BOT/aura-flow/internal/domain"

// PaymentLinks maps a product id to a pre-configured hosted payment page.
type PaymentLinks map[int64]string

// DirectLink returns the hosted page for a single-entry cart whose product
// has a link configured. Any other cart falls through to session creation.
func (l PaymentLinks) DirectLink(entries []domain.CartEntry) (string, bool) {
	if len(entries) != 1 {
		return "", false
	}
	link, ok := l[entries[0].ProductID]
	if !ok || link == "" {
		return "", false
	}
	return link, true
}
