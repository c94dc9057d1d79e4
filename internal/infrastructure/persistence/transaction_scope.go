package persistence

import (
	"context"

	"gorm.io/gorm"

	apporder "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
)

// GormTransactionScope implements apporder.TransactionScope using GORM transactions.
// If fn returns an error the transaction is rolled back, otherwise committed.
type GormTransactionScope struct {
	db        *gorm.DB
	inventory *GormInventoryItemRepository
	orders    *GormOrderRepository
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{
		db:        db,
		inventory: NewGormInventoryItemRepository(db),
		orders:    NewGormOrderRepository(db),
	}
}

func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{
			inventory: s.inventory.WithTx(tx),
			orders:    s.orders.WithTx(tx),
		})
	})
}

type gormTransactionalRepositories struct {
	inventory *GormInventoryItemRepository
	orders    *GormOrderRepository
}

func (r *gormTransactionalRepositories) InventoryRepo() inventory.InventoryItemRepository {
	return r.inventory
}

func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return r.orders
}

var (
	_ apporder.TransactionScope          = (*GormTransactionScope)(nil)
	_ apporder.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
