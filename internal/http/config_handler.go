package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/G77-BOT/aura-flow/internal/domain"
)

// ConfigHandler publishes the client-safe configuration. The secret key never
// reaches it.
type ConfigHandler struct {
	resp ConfigResponse
}

type ConfigResponse struct {
	PublishableKey string            `json:"publishableKey"`
	PaymentLinks   map[string]string `json:"paymentLinks"`
	TaxPercent     decimal.Decimal   `json:"taxPercent"`
	Currency       string            `json:"currency"`
}

func NewConfigHandler(publishableKey string, paymentLinks map[int64]string, taxPercent decimal.Decimal) *ConfigHandler {
	links := make(map[string]string, len(paymentLinks))
	for id, link := range paymentLinks {
		links[strconv.FormatInt(id, 10)] = link
	}
	return &ConfigHandler{resp: ConfigResponse{
		PublishableKey: publishableKey,
		PaymentLinks:   links,
		TaxPercent:     taxPercent,
		Currency:       domain.Currency,
	}}
}

func (h *ConfigHandler) Get(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.resp)
}
