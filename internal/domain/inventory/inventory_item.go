package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// DefaultLocation is used when an item is created without a location
const DefaultLocation = "MAIN"

// InventoryItem is the stock record of one product at one location.
// Quantity never goes below zero.
type InventoryItem struct {
	shared.BaseAggregateRoot
	ProductID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	Product                 *catalog.Product `gorm:"foreignKey:ProductID"`
	Quantity                int              `gorm:"not null;default:0"`
	Location                string           `gorm:"type:varchar(100);not null;default:'MAIN';index"`
	ReorderPoint            int              `gorm:"not null;default:0"`
	LastRestockedAt         *time.Time
	ExternalInventoryItemID string           `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a stock record for a product
func NewInventoryItem(productID uuid.UUID, quantity int, location string, reorderPoint int) (*InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if reorderPoint < 0 {
		return nil, shared.NewDomainError("INVALID_REORDER_POINT", "Reorder point cannot be negative")
	}

	item := &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          quantity,
		Location:          normalizeLocation(location),
		ReorderPoint:      reorderPoint,
	}
	if quantity > 0 {
		now := item.CreatedAt
		item.LastRestockedAt = &now
	}
	return item, nil
}

// Adjust applies a signed delta to the quantity. A result below zero is rejected
// and leaves the item unchanged; a positive delta records a restock.
func (i *InventoryItem) Adjust(delta int, reason string, at time.Time) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_ADJUSTMENT", "Adjustment must be a non-zero integer")
	}
	newQuantity := i.Quantity + delta
	if newQuantity < 0 {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Adjustment would reduce quantity below zero")
	}

	oldQuantity := i.Quantity
	i.Quantity = newQuantity
	if delta > 0 {
		i.LastRestockedAt = &at
	}
	i.UpdatedAt = at
	i.IncrementVersion()

	i.AddDomainEvent(NewInventoryAdjustedEvent(i, oldQuantity, delta, reason))
	if i.IsLowStock() {
		i.AddDomainEvent(NewInventoryLowStockEvent(i))
	}
	return nil
}

// Deduct removes qty units for an order
func (i *InventoryItem) Deduct(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity to deduct must be positive")
	}
	if !i.CanFulfill(qty) {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	}

	i.Quantity -= qty
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if i.IsLowStock() {
		i.AddDomainEvent(NewInventoryLowStockEvent(i))
	}
	return nil
}

// Details carries the mutable descriptive fields of an item
type Details struct {
	Location                *string
	ReorderPoint            *int
	ExternalInventoryItemID *string
}

// Update applies the non-nil fields of d
func (i *InventoryItem) Update(d Details) error {
	if d.ReorderPoint != nil {
		if *d.ReorderPoint < 0 {
			return shared.NewDomainError("INVALID_REORDER_POINT", "Reorder point cannot be negative")
		}
		i.ReorderPoint = *d.ReorderPoint
	}
	if d.Location != nil {
		i.Location = normalizeLocation(*d.Location)
	}
	if d.ExternalInventoryItemID != nil {
		i.ExternalInventoryItemID = strings.TrimSpace(*d.ExternalInventoryItemID)
	}
	i.Touch()
	i.IncrementVersion()
	return nil
}

// CanFulfill reports whether qty units are on hand
func (i *InventoryItem) CanFulfill(qty int) bool {
	return qty <= i.Quantity
}

// IsLowStock reports whether the quantity is at or below the reorder point
func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.ReorderPoint
}

// StockValue is quantity times the product price; zero when the product is not loaded
func (i *InventoryItem) StockValue() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SKU returns the SKU of the loaded product
func (i *InventoryItem) SKU() string {
	if i.Product == nil {
		return ""
	}
	return i.Product.SKU
}

// Name returns the name of the loaded product
func (i *InventoryItem) Name() string {
	if i.Product == nil {
		return ""
	}
	return i.Product.Name
}

func normalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return DefaultLocation
	}
	return location
}
