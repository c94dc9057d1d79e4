package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/order"
)

var (
	ErrNotConfigured   = errors.New("integration: platform not configured")
	ErrUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrRequestFailed   = errors.New("integration: platform request failed")
	ErrInvalidResponse = errors.New("integration: invalid platform response")
	ErrAuthFailed      = errors.New("integration: platform authentication failed")
	ErrRateLimited     = errors.New("integration: platform rate limited")
)

// FulfillmentStatusFulfilled is the platform's fulfillment_status for shipped orders
const FulfillmentStatusFulfilled = "fulfilled"

// FulfillmentStatusFor maps a local order status to the platform's
// fulfillment_status. nil means "unfulfilled".
func FulfillmentStatusFor(s order.Status) *string {
	switch s {
	case order.StatusFulfilled, order.StatusShipped, order.StatusCompleted:
		v := FulfillmentStatusFulfilled
		return &v
	default:
		return nil
	}
}

// PlatformOrder is an order as read from the commerce platform
type PlatformOrder struct {
	ID            string
	Name          string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       order.Address
	Items         []PlatformOrderItem
	Note          string
	CreatedAt     time.Time
}

// PlatformOrderItem is one line of a PlatformOrder
type PlatformOrderItem struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// Webhook is a registered platform webhook subscription
type Webhook struct {
	ID        string
	Topic     string
	Address   string
	CreatedAt time.Time
}

// CommercePlatform is the port to the storefront. Implementations skip
// orders and inventory items that carry no external id.
type CommercePlatform interface {
	// SyncOrderStatus pushes the order's fulfillment status
	SyncOrderStatus(ctx context.Context, o *order.Order) error

	// SyncInventoryLevel sets the available quantity of a platform inventory item
	SyncInventoryLevel(ctx context.Context, externalItemID string, available int) error

	// FetchOrders lists platform orders created at or after since
	FetchOrders(ctx context.Context, since time.Time) ([]PlatformOrder, error)

	// CreateWebhook subscribes address to topic
	CreateWebhook(ctx context.Context, topic, address string) (*Webhook, error)
}
