package domain

// Currency is the only currency sessions are priced in.
const Currency = "usd"

// LineItem is a priced unit sent to the payment provider.
type LineItem struct {
	Currency             string   `json:"currency"`
	ProductName          string   `json:"productName"`
	ProductImageURLs     []string `json:"productImageURLs,omitempty"`
	UnitAmountMinorUnits int64    `json:"unitAmountMinorUnits"`
	Quantity             int64    `json:"quantity"`
}

// Amount is the line total in minor units.
func (li LineItem) Amount() int64 {
	return li.UnitAmountMinorUnits * li.Quantity
}

// TotalAmount sums the amounts of all line items.
func TotalAmount(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Amount()
	}
	return total
}

type SessionStatus string

const (
	SessionStatusOpen     SessionStatus = "open"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusExpired  SessionStatus = "expired"
)

func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusComplete || s == SessionStatusExpired
}

// String representation (for logging)
func (s SessionStatus) String() string {
	return string(s)
}

// PaymentIntent is the provider's record of the money movement behind a session.
type PaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SessionRequest is what the provider needs to open a hosted checkout.
type SessionRequest struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// TotalDetails breaks the session total down as the provider computed it.
type TotalDetails struct {
	AmountDiscount int64 `json:"amountDiscount"`
	AmountShipping int64 `json:"amountShipping"`
	AmountTax      int64 `json:"amountTax"`
}

// CheckoutSession is a provider-owned session. The backend only ever holds a copy
// for the duration of a request.
type CheckoutSession struct {
	ID                 string         `json:"id"`
	RedirectURL        string         `json:"url,omitempty"`
	Mode               string         `json:"mode,omitempty"`
	Status             SessionStatus  `json:"status,omitempty"`
	PaymentStatus      string         `json:"paymentStatus,omitempty"`
	PaymentMethodTypes []string       `json:"paymentMethodTypes,omitempty"`
	AmountSubtotal     int64          `json:"amountSubtotal"`
	AmountTotal        int64          `json:"amountTotal"`
	TotalDetails       *TotalDetails  `json:"totalDetails,omitempty"`
	Currency           string         `json:"currency,omitempty"`
	CustomerEmail      string         `json:"customerEmail,omitempty"`
	CustomerName       string         `json:"customerName,omitempty"`
	CreatedAt          int64          `json:"createdAt,omitempty"`
	ExpiresAt          int64          `json:"expiresAt,omitempty"`
	LineItems          []LineItem     `json:"lineItems"`
	PaymentIntent      *PaymentIntent `json:"paymentIntent,omitempty"`
}
