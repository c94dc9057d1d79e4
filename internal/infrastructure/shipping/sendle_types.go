package shipping

import (
	"time"

	"github.com/shopspring/decimal"
)

type sendleContact struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	StateName    string `json:"state_name,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country,omitempty"`
}

type sendleWeight struct {
	Value decimal.Decimal `json:"value"`
	Units string          `json:"units"`
}

type sendleDimensions struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Units  string          `json:"units"`
}

// sendleOrderRequest is the body of POST /orders
type sendleOrderRequest struct {
	PickupAddress   sendleContact `json:"pickup_address"`
	DeliveryAddress sendleContact `json:"delivery_address"`
	PackageSize     string        `json:"package_size,omitempty"`
	Weight          sendleWeight  `json:"weight"`
	Description     string        `json:"description,omitempty"`
	CustomerRef     string        `json:"customer_reference,omitempty"`
}

type sendleOrderResponse struct {
	OrderID        string `json:"order_id"`
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// sendleQuoteRequest is the body of POST /quote
type sendleQuoteRequest struct {
	Package struct {
		Weight     sendleWeight     `json:"weight"`
		Dimensions sendleDimensions `json:"dimensions"`
	} `json:"package"`
	Destination sendleContact `json:"destination"`
}

type sendleQuoteResponse struct {
	Quotes []sendleQuote `json:"quotes"`
}

type sendleQuote struct {
	PlanName string `json:"plan_name"`
	Quote    struct {
		Gross struct {
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
		} `json:"gross"`
	} `json:"quote"`
	ETA struct {
		DaysRange []int `json:"days_range"`
	} `json:"eta"`
	Description string `json:"description"`
}

type sendleTrackingResponse struct {
	State          string                `json:"state"`
	TrackingEvents []sendleTrackingEvent `json:"tracking_events"`
}

type sendleTrackingEvent struct {
	EventType   string    `json:"event_type"`
	ScanTime    time.Time `json:"scan_time"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
}

type sendleErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
