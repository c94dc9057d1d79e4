package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/shared"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status Status
}

// OrderRepository defines the interface for order persistence. Reads preload items.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	// Create inserts the order with its items. Duplicate order number or
	// external id yields ALREADY_EXISTS.
	Create(ctx context.Context, o *Order) error
	// SaveWithLock persists header changes if the stored version is o.Version-1
	SaveWithLock(ctx context.Context, o *Order) error

	// FindCreatedBetween returns orders created in [from, to], items included
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]Order, error)
	// FindFulfilledBetween returns orders whose fulfilled_at lies in [from, to]
	FindFulfilledBetween(ctx context.Context, from, to time.Time) ([]Order, error)
	// CountCreatedBetween counts orders created in [from, to]
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}
