package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/shared"
)

// AggregateTypeOrder names the aggregate in events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderFulfilled     = "OrderFulfilled"
)

// OrderCreatedEvent is raised when an order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is raised on every status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

// OrderFulfilledEvent is raised once stock is deducted and a label issued
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	TrackingNumber string    `json:"tracking_number"`
	LabelURL       string    `json:"label_url"`
}

// NewOrderFulfilledEvent creates a new OrderFulfilledEvent
func NewOrderFulfilledEvent(o *Order) *OrderFulfilledEvent {
	return &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFulfilled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		TrackingNumber:  o.TrackingNumber,
		LabelURL:        o.ShippingLabelURL,
	}
}
