package domain

// CartEntry references a product selected by a shopper.
type CartEntry struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// MaxQuantityPerProduct is fixed: a product appears in a cart at most once.
const MaxQuantityPerProduct = 1
