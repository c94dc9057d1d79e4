package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/inventory"
)

// CreateInventoryItemRequest represents a request to stock a product at a location
type CreateInventoryItemRequest struct {
	ProductID               uuid.UUID `json:"product_id" binding:"required"`
	Quantity                int       `json:"quantity" binding:"min=0"`
	Location                string    `json:"location" binding:"max=100"`
	ReorderPoint            int       `json:"reorder_point" binding:"min=0"`
	ExternalInventoryItemID string    `json:"external_inventory_item_id" binding:"max=64"`
}

// UpdateInventoryItemRequest changes descriptive fields. Quantity only
// changes through an adjustment.
type UpdateInventoryItemRequest struct {
	Location                *string `json:"location" binding:"omitempty,max=100"`
	ReorderPoint            *int    `json:"reorder_point" binding:"omitempty,min=0"`
	ExternalInventoryItemID *string `json:"external_inventory_item_id" binding:"omitempty,max=64"`
}

// AdjustInventoryRequest applies a signed quantity change
type AdjustInventoryRequest struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason" binding:"max=500"`
}

// InventoryListFilter is the query of an inventory listing
type InventoryListFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Location  string `form:"location"`
	ProductID string `form:"product_id"`
	SKU       string `form:"sku"`
	LowStock  bool   `form:"low_stock"`
	Search    string `form:"search"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir"`
}

// InventoryItemResponse represents an inventory item in API responses
type InventoryItemResponse struct {
	ID                      uuid.UUID  `json:"id"`
	ProductID               uuid.UUID  `json:"product_id"`
	SKU                     string     `json:"sku,omitempty"`
	ProductName             string     `json:"product_name,omitempty"`
	Quantity                int        `json:"quantity"`
	Location                string     `json:"location"`
	ReorderPoint            int        `json:"reorder_point"`
	LowStock                bool       `json:"low_stock"`
	LastRestockedAt         *time.Time `json:"last_restocked_at,omitempty"`
	ExternalInventoryItemID string     `json:"external_inventory_item_id,omitempty"`
	Version                 int        `json:"version"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// ToInventoryItemResponse converts an item to its response
func ToInventoryItemResponse(item *inventory.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:                      item.ID,
		ProductID:               item.ProductID,
		SKU:                     item.SKU(),
		ProductName:             item.Name(),
		Quantity:                item.Quantity,
		Location:                item.Location,
		ReorderPoint:            item.ReorderPoint,
		LowStock:                item.IsLowStock(),
		LastRestockedAt:         item.LastRestockedAt,
		ExternalInventoryItemID: item.ExternalInventoryItemID,
		Version:                 item.Version,
		CreatedAt:               item.CreatedAt,
		UpdatedAt:               item.UpdatedAt,
	}
}

// ToInventoryItemResponses converts a slice of items
func ToInventoryItemResponses(items []inventory.InventoryItem) []InventoryItemResponse {
	out := make([]InventoryItemResponse, len(items))
	for i := range items {
		out[i] = ToInventoryItemResponse(&items[i])
	}
	return out
}
