package integration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/order"
)

// Contact is a named postal address used for pickup and delivery
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address order.Address
}

// LabelRequest asks the carrier to book a parcel and issue a label
type LabelRequest struct {
	Pickup      Contact
	Delivery    Contact
	PackageSize string
	Weight      decimal.Decimal
	Description string
	Reference   string
}

// Package describes the parcel to quote for
type Package struct {
	Weight decimal.Decimal
	Length decimal.Decimal
	Width  decimal.Decimal
	Height decimal.Decimal
}

// QuoteRequest asks for the price of shipping a package to a destination
type QuoteRequest struct {
	Package     Package
	Destination order.Address
}

// Quote is one priced shipping option
type Quote struct {
	PlanName    string
	Amount      decimal.Decimal
	Currency    string
	MinETADays  int
	MaxETADays  int
	Description string
}

// TrackingEvent is one scan of a parcel
type TrackingEvent struct {
	Type        string
	Description string
	Location    string
	OccurredAt  time.Time
}

// TrackingInfo is the current state of a parcel
type TrackingInfo struct {
	TrackingNumber string
	State          string
	Events         []TrackingEvent
}

// Carrier is the port to the shipping provider
type Carrier interface {
	CreateLabel(ctx context.Context, req LabelRequest) (*order.ShippingLabel, error)
	Quote(ctx context.Context, req QuoteRequest) ([]Quote, error)
	Track(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
}
