package domain

// Product is a catalog entry. Prices are integer minor currency units.
type Product struct {
	ID                  int64
	Name                string
	UnitPriceMinorUnits int64
	ImageRef            string
	InStock             bool
	Category            string
	Description         string
	// MarketplaceURL is where out-of-stock products send shoppers instead of checkout.
	MarketplaceURL string
}

// Purchasable reports whether the product may enter a checkout session.
func (p Product) Purchasable() bool {
	return p.InStock
}
