package order

import (
	"context"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
)

// TransactionScope runs fulfillment writes in one database transaction.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current transaction.
type TransactionalRepositories interface {
	// InventoryRepo returns the inventory item repository scoped to the current transaction
	InventoryRepo() inventory.InventoryItemRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	inventoryRepo inventory.InventoryItemRepository
	orderRepo     order.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(inventoryRepo inventory.InventoryItemRepository, orderRepo order.OrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InventoryRepo returns the inventory item repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryItemRepository {
	return s.inventoryRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
