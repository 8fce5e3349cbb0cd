package checkout

import (
	"errors"
	"strings"

	"github.com/G77-BOT/aura-flow/internal/catalog"
	"github.com/G77-BOT/aura-flow/internal/domain"
)

type DropReason string

const (
	DropUnknownProduct  DropReason = "unknown_product"
	DropOutOfStock      DropReason = "out_of_stock"
	DropDuplicate       DropReason = "duplicate"
	DropInvalidQuantity DropReason = "invalid_quantity"
	DropCatalogFailure  DropReason = "catalog_error"
)

// DroppedEntry records a cart entry that did not become a line item.
type DroppedEntry struct {
	ProductID int64
	Reason    DropReason
}

// BuildLineItems resolves cart entries against the catalog. Names, prices and
// images always come from the catalog; quantity is always one per product.
func BuildLineItems(cat catalog.Catalog, entries []domain.CartEntry, baseURL string) ([]domain.LineItem, []DroppedEntry) {
	var (
		items   []domain.LineItem
		dropped []DroppedEntry
		seen    = make(map[int64]bool, len(entries))
	)

	for _, entry := range entries {
		if entry.Quantity < 0 {
			dropped = append(dropped, DroppedEntry{ProductID: entry.ProductID, Reason: DropInvalidQuantity})
			continue
		}
		if seen[entry.ProductID] {
			dropped = append(dropped, DroppedEntry{ProductID: entry.ProductID, Reason: DropDuplicate})
			continue
		}

		p, err := cat.Lookup(entry.ProductID)
		if err != nil {
			reason := DropCatalogFailure
			if errors.Is(err, catalog.ErrProductNotFound) {
				reason = DropUnknownProduct
			}
			dropped = append(dropped, DroppedEntry{ProductID: entry.ProductID, Reason: reason})
			continue
		}
		if !p.Purchasable() {
			dropped = append(dropped, DroppedEntry{ProductID: entry.ProductID, Reason: DropOutOfStock})
			continue
		}

		seen[entry.ProductID] = true
		items = append(items, lineItemFor(p, baseURL))
	}

	return items, dropped
}

func lineItemFor(p domain.Product, baseURL string) domain.LineItem {
	item := domain.LineItem{
		Currency:             domain.Currency,
		ProductName:          p.Name,
		UnitAmountMinorUnits: p.UnitPriceMinorUnits,
		Quantity:             domain.MaxQuantityPerProduct,
	}
	if p.ImageRef != "" {
		item.ProductImageURLs = []string{absoluteURL(baseURL, p.ImageRef)}
	}
	return item
}

func absoluteURL(baseURL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}
