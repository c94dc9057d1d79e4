package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
)

// setupTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(nil, 0, 0))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&identity.User{},
		&catalog.Product{},
		&inventory.InventoryItem{},
		&order.Order{},
		&order.Item{},
	))
	return db
}

// newMockDB returns a postgres-dialect gorm DB backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price float64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, decimal.NewFromFloat(price))
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Create(t.Context(), p))
	return p
}

func seedItem(t *testing.T, db *gorm.DB, p *catalog.Product, qty int, location string, reorder int) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem(p.ID, qty, location, reorder)
	require.NoError(t, err)
	require.NoError(t, NewGormInventoryItemRepository(db).Create(t.Context(), item))
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, number string, createdAt time.Time, items ...order.ItemInput) *order.Order {
	t.Helper()
	o, err := order.NewOrder(number, order.Customer{Name: "Ada Lovelace", Email: "ada@example.com"}, items)
	require.NoError(t, err)
	o.CreatedAt = createdAt
	o.UpdatedAt = createdAt
	require.NoError(t, NewGormOrderRepository(db).Create(t.Context(), o))
	return o
}
