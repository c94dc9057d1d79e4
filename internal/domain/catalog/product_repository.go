package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/shared"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	Category string
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	// FindByIDs returns the products found; missing ids are silently skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	Create(ctx context.Context, product *Product) error
	// Save persists an updated product, failing with CONCURRENCY_CONFLICT on a stale version
	Save(ctx context.Context, product *Product) error
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
}
