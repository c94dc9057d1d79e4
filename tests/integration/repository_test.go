//go:build integration

package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
)

func createProduct(t *testing.T, repo *persistence.GormProductRepository, sku string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(t.Context(), p))
	return p
}

func TestProductRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormProductRepository(tdb.DB)

	p := createProduct(t, repo, "MUG-01")

	found, err := repo.FindBySKU(t.Context(), "mug-01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("12.50")))

	dup, err := catalog.NewProduct("MUG-01", "Other", decimal.NewFromInt(1))
	require.NoError(t, err)
	err = repo.Create(t.Context(), dup)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = repo.FindByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInventoryRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	products := persistence.NewGormProductRepository(tdb.DB)
	repo := persistence.NewGormInventoryItemRepository(tdb.DB)

	p := createProduct(t, products, "BOLT-10")
	item, err := inventory.NewInventoryItem(p.ID, 10, "A1", 2)
	require.NoError(t, err)
	require.NoError(t, repo.Create(t.Context(), item))

	t.Run("stale save is rejected", func(t *testing.T) {
		stale, err := repo.FindByID(t.Context(), item.ID)
		require.NoError(t, err)

		require.NoError(t, item.Adjust(5, "restock", time.Now().UTC()))
		require.NoError(t, repo.SaveWithLock(t.Context(), item))

		require.NoError(t, stale.Adjust(-1, "damaged", time.Now().UTC()))
		assert.ErrorIs(t, repo.SaveWithLock(t.Context(), stale), shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(t.Context(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, 15, found.Quantity)
		assert.Equal(t, "BOLT-10", found.SKU())
	})

	t.Run("concurrent deductions on one version", func(t *testing.T) {
		current, err := repo.FindByID(t.Context(), item.ID)
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			conflicts int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.DeductWithLock(t.Context(), current.ID, current.Version, 3)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case assert.ErrorIs(t, err, shared.ErrConcurrencyConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 4, conflicts)

		found, err := repo.FindByID(t.Context(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, current.Quantity-3, found.Quantity)
		assert.Equal(t, current.Version+1, found.Version)
	})

	t.Run("deduction below zero is rejected", func(t *testing.T) {
		current, err := repo.FindByID(t.Context(), item.ID)
		require.NoError(t, err)

		err = repo.DeductWithLock(t.Context(), current.ID, current.Version, current.Quantity+1)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestOrderRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormOrderRepository(tdb.DB)

	o, err := order.NewOrder("ORD-1001", order.Customer{Name: "Ada Lovelace", Email: "ada@example.com"}, []order.ItemInput{
		{SKU: "MUG-01", Name: "Mug", Category: "Kitchen", Quantity: 2, Price: decimal.RequireFromString("12.50")},
		{SKU: "TEA-02", Name: "Tea", Category: "Pantry", Quantity: 1, Price: decimal.RequireFromString("4.00")},
	})
	require.NoError(t, err)
	o.SetExternalOrderID("shop-77")
	require.NoError(t, repo.Create(t.Context(), o))

	found, err := repo.FindByID(t.Context(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", found.OrderNumber)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("29.00")))
	require.Len(t, found.Items, 2)

	exists, err := repo.ExistsByExternalID(t.Context(), "shop-77")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByExternalID(t.Context(), "shop-78")
	require.NoError(t, err)
	assert.False(t, exists)

	dup, err := order.NewOrder("ORD-1001", order.Customer{Name: "Other"}, []order.ItemInput{
		{SKU: "MUG-01", Name: "Mug", Quantity: 1, Price: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(t.Context(), dup), shared.ErrAlreadyExists)

	from := time.Now().Add(-time.Hour)
	count, err := repo.CountCreatedBetween(t.Context(), from, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
