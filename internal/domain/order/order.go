package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Status is the lifecycle stage of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusFulfilled  Status = "fulfilled"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusFulfilled, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether a manual status update from s to target is allowed.
// Fulfilled is only reachable through MarkFulfilled and nothing returns to pending.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCancelled
	case StatusFulfilled:
		return target == StatusShipped
	case StatusShipped:
		return target == StatusCompleted
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// CanFulfill reports whether an order in status s may be fulfilled
func (s Status) CanFulfill() bool {
	return s == StatusPending || s == StatusProcessing
}

// Address is a postal address
type Address struct {
	Street  string `gorm:"type:varchar(200)" json:"street"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state"`
	ZipCode string `gorm:"type:varchar(20)" json:"zip_code"`
	Country string `gorm:"type:varchar(100)" json:"country"`
}

// IsZero reports whether no address field is set
func (a Address) IsZero() bool {
	return a == Address{}
}

// Customer is the buyer of an order
type Customer struct {
	Name    string  `gorm:"type:varchar(200);not null"`
	Email   string  `gorm:"type:varchar(200)"`
	Phone   string  `gorm:"type:varchar(50)"`
	Address Address `gorm:"embedded;embeddedPrefix:address_"`
}

// Item is one order line. ProductID may be nil for lines imported from the
// commerce platform before the product exists in the catalog.
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;index"`
	SKU       string          `gorm:"column:sku;type:varchar(64);not null;index"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Category  string          `gorm:"type:varchar(100)"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// Subtotal returns quantity * price
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemInput describes a line to add
type ItemInput struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Category  string
	Quantity  int
	Price     decimal.Decimal
}

// Order is a customer order and the aggregate root for its lines
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ExternalOrderID  *string         `gorm:"type:varchar(64);uniqueIndex"`
	Customer         Customer        `gorm:"embedded;embeddedPrefix:customer_"`
	Items            []Item          `gorm:"foreignKey:OrderID"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'pending';index"`
	ShippingLabelURL string          `gorm:"type:varchar(500)"`
	TrackingNumber   string          `gorm:"type:varchar(100);index"`
	FulfilledAt      *time.Time      `gorm:"index"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order. orderNumber is generated when empty.
func NewOrder(orderNumber string, customer Customer, items []ItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Invalid order data")
	}
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}

	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		orderNumber = GenerateOrderNumber(time.Now())
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Customer:          customer,
		Status:            StatusPending,
		Items:             make([]Item, 0, len(items)),
	}
	for _, in := range items {
		if err := o.addItem(in); err != nil {
			return nil, err
		}
	}
	o.CalculateTotal()

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

func (o *Order) addItem(in ItemInput) error {
	sku := catalog.NormalizeSKU(in.SKU)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "Item SKU cannot be empty")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item name cannot be empty for SKU %s", sku))
	}
	if in.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity must be at least 1 for SKU %s", sku))
	}
	if in.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Price cannot be negative for SKU %s", sku))
	}

	now := o.CreatedAt
	o.Items = append(o.Items, Item{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: in.ProductID,
		SKU:       sku,
		Name:      name,
		Category:  in.Category,
		Quantity:  in.Quantity,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

// SetExternalOrderID links the order to its commerce platform counterpart
func (o *Order) SetExternalOrderID(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		o.ExternalOrderID = nil
		return
	}
	o.ExternalOrderID = &id
}

// ExternalID returns the commerce platform id or ""
func (o *Order) ExternalID() string {
	if o.ExternalOrderID == nil {
		return ""
	}
	return *o.ExternalOrderID
}

// CalculateTotal recomputes TotalAmount from the lines
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
	return total
}

// TransitionTo performs a manual status update
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status: %s", target))
	}
	if target == StatusFulfilled {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Orders are fulfilled through the fulfill operation")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}

	from := o.Status
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// ShippingLabel is the carrier's answer to a label request
type ShippingLabel struct {
	TrackingNumber string
	LabelURL       string
}

// MarkFulfilled records a shipped label and moves the order to fulfilled
func (o *Order) MarkFulfilled(label ShippingLabel, at time.Time) error {
	if !o.Status.CanFulfill() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fulfill order in %s status", o.Status))
	}

	from := o.Status
	o.Status = StatusFulfilled
	o.ShippingLabelURL = label.LabelURL
	o.TrackingNumber = label.TrackingNumber
	o.FulfilledAt = &at
	o.UpdatedAt = at
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	o.AddDomainEvent(NewOrderFulfilledEvent(o))
	return nil
}

// FulfillmentDuration is fulfilled_at - created_at, or zero when unfulfilled
func (o *Order) FulfillmentDuration() time.Duration {
	if o.FulfilledAt == nil {
		return 0
	}
	return o.FulfilledAt.Sub(o.CreatedAt)
}

// QuantitiesBySKU sums the ordered quantity per SKU in first-seen order
func (o *Order) QuantitiesBySKU() ([]string, map[string]int) {
	order := make([]string, 0, len(o.Items))
	qty := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		if _, ok := qty[item.SKU]; !ok {
			order = append(order, item.SKU)
		}
		qty[item.SKU] += item.Quantity
	}
	return order, qty
}

// GenerateOrderNumber builds ORD-YYYYMMDD-XXXXXX
func GenerateOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}
