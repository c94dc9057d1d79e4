package inventory

import (
	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/shared"
)

// AggregateTypeInventoryItem names the aggregate in events
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeInventoryAdjusted = "InventoryAdjusted"
	EventTypeInventoryLowStock = "InventoryLowStock"
)

// InventoryAdjustedEvent is raised after a manual adjustment
type InventoryAdjustedEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ProductID       uuid.UUID `json:"product_id"`
	OldQuantity     int       `json:"old_quantity"`
	NewQuantity     int       `json:"new_quantity"`
	Delta           int       `json:"delta"`
	Reason          string    `json:"reason,omitempty"`
}

// NewInventoryAdjustedEvent creates a new InventoryAdjustedEvent
func NewInventoryAdjustedEvent(item *InventoryItem, oldQuantity, delta int, reason string) *InventoryAdjustedEvent {
	return &InventoryAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryAdjusted, AggregateTypeInventoryItem, item.ID),
		InventoryItemID: item.ID,
		ProductID:       item.ProductID,
		OldQuantity:     oldQuantity,
		NewQuantity:     item.Quantity,
		Delta:           delta,
		Reason:          reason,
	}
}

// InventoryLowStockEvent is raised when an item drops to or below its reorder point
type InventoryLowStockEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ProductID       uuid.UUID `json:"product_id"`
	SKU             string    `json:"sku,omitempty"`
	Location        string    `json:"location"`
	Quantity        int       `json:"quantity"`
	ReorderPoint    int       `json:"reorder_point"`
}

// NewInventoryLowStockEvent creates a new InventoryLowStockEvent
func NewInventoryLowStockEvent(item *InventoryItem) *InventoryLowStockEvent {
	return &InventoryLowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryLowStock, AggregateTypeInventoryItem, item.ID),
		InventoryItemID: item.ID,
		ProductID:       item.ProductID,
		SKU:             item.SKU(),
		Location:        item.Location,
		Quantity:        item.Quantity,
		ReorderPoint:    item.ReorderPoint,
	}
}
