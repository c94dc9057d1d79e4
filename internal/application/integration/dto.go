package integration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/integration"
)

// PackageInput describes the parcel to quote
type PackageInput struct {
	Weight decimal.Decimal `json:"weight"`
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
}

// ShippingQuoteRequest requests carrier quotes for a parcel
type ShippingQuoteRequest struct {
	Package     PackageInput       `json:"package"`
	Destination order.AddressInput `json:"destination"`
}

// QuoteResponse is one carrier offer
type QuoteResponse struct {
	PlanName    string          `json:"plan_name"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	MinETADays  int             `json:"min_eta_days,omitempty"`
	MaxETADays  int             `json:"max_eta_days,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ShippingQuoteResponse lists the carrier offers
type ShippingQuoteResponse struct {
	Quotes []QuoteResponse `json:"quotes"`
}

// RegisterWebhookRequest subscribes an address to a commerce platform topic
type RegisterWebhookRequest struct {
	Topic   string `json:"topic" binding:"required"`
	Address string `json:"address" binding:"required,url"`
}

// WebhookResponse represents a registered webhook
type WebhookResponse struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func toQuoteResponses(quotes []integration.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = QuoteResponse{
			PlanName:    q.PlanName,
			Amount:      q.Amount,
			Currency:    q.Currency,
			MinETADays:  q.MinETADays,
			MaxETADays:  q.MaxETADays,
			Description: q.Description,
		}
	}
	return out
}
