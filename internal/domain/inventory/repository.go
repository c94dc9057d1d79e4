package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/shared"
)

// InventoryFilter narrows inventory listings
type InventoryFilter struct {
	shared.Filter
	Location  string
	ProductID *uuid.UUID
	SKU       string
	LowStock  bool
}

// InventoryItemRepository defines the interface for inventory persistence.
// Reads preload the product.
type InventoryItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	FindAll(ctx context.Context, filter InventoryFilter) ([]InventoryItem, int64, error)
	// FindAllWithProducts returns every item for reporting
	FindAllWithProducts(ctx context.Context) ([]InventoryItem, error)
	// FindBySKU returns the items of the product with sku, highest quantity first
	FindBySKU(ctx context.Context, sku string) ([]InventoryItem, error)
	Create(ctx context.Context, item *InventoryItem) error
	// SaveWithLock persists item if its stored version is item.Version-1,
	// otherwise it fails with CONCURRENCY_CONFLICT
	SaveWithLock(ctx context.Context, item *InventoryItem) error
	// DeductWithLock decrements quantity by qty when the stored version equals
	// expectedVersion and at least qty units remain; otherwise CONCURRENCY_CONFLICT
	DeductWithLock(ctx context.Context, id uuid.UUID, expectedVersion, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
}
