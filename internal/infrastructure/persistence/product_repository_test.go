package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

func TestGormProductRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := t.Context()

	widget := seedProduct(t, db, "wid-1", 9.99)
	gadget := seedProduct(t, db, "GAD-1", 20)

	category := "hand tools"
	tags := []string{"steel", "Steel", "metric"}
	require.NoError(t, widget.Update(catalog.ProductDetails{
		Category:   &category,
		Tags:       tags,
		Dimensions: &catalog.Dimensions{Length: decimal.NewFromInt(2), Width: decimal.NewFromInt(3), Height: decimal.NewFromInt(4), Weight: decimal.NewFromFloat(1.5)},
	}))
	require.NoError(t, repo.Save(ctx, widget))

	t.Run("find by sku is case-insensitive", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, " wid-1 ")
		require.NoError(t, err)
		assert.Equal(t, widget.ID, found.ID)
		assert.Equal(t, "Hand Tools", found.Category)
		assert.Equal(t, widget.Tags, found.Tags)
		assert.True(t, found.Dimensions.Weight.Equal(decimal.NewFromFloat(1.5)))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		dup, err := catalog.NewProduct("WID-1", "Copy", decimal.Zero)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)

		exists, err := repo.ExistsBySKU(ctx, "wid-1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, gadget.ID)
		require.NoError(t, err)

		name := "Gadget v2"
		require.NoError(t, gadget.Update(catalog.ProductDetails{Name: &name}))
		require.NoError(t, repo.Save(ctx, gadget))

		other := "Gadget v3"
		require.NoError(t, stale.Update(catalog.ProductDetails{Name: &other}))
		assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
	})

	t.Run("find all filters and paginates", func(t *testing.T) {
		filter := catalog.ProductFilter{Filter: shared.DefaultFilter(), Category: "HAND TOOLS"}
		products, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, widget.ID, products[0].ID)

		filter = catalog.ProductFilter{Filter: shared.DefaultFilter()}
		filter.Search = "gad"
		products, total, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, gadget.ID, products[0].ID)

		filter = catalog.ProductFilter{Filter: shared.Filter{Page: 2, PageSize: 1, OrderBy: "sku", OrderDir: "asc"}}
		products, total, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, products, 1)
		assert.Equal(t, "WID-1", products[0].SKU)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		products, err := repo.FindByIDs(ctx, []uuid.UUID{widget.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, products, 1)

		products, err = repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}
