package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

func newTestItem(t *testing.T, quantity, reorderPoint int) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem(uuid.New(), quantity, "A1", reorderPoint)
	require.NoError(t, err)
	return item
}

func TestNewInventoryItem(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), 5, "", 2)
	require.NoError(t, err)
	assert.Equal(t, DefaultLocation, item.Location)
	assert.NotNil(t, item.LastRestockedAt)
	assert.Equal(t, 1, item.Version)

	_, err = NewInventoryItem(uuid.Nil, 5, "A1", 0)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PRODUCT", ""))

	_, err = NewInventoryItem(uuid.New(), -1, "A1", 0)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_QUANTITY", ""))

	_, err = NewInventoryItem(uuid.New(), 1, "A1", -1)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_REORDER_POINT", ""))
}

func TestInventoryItem_Adjust(t *testing.T) {
	t.Run("restock updates timestamp and version", func(t *testing.T) {
		item := newTestItem(t, 0, 5)
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, item.Adjust(10, "delivery", at))
		assert.Equal(t, 10, item.Quantity)
		require.NotNil(t, item.LastRestockedAt)
		assert.Equal(t, at, *item.LastRestockedAt)
		assert.Equal(t, 2, item.Version)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInventoryAdjusted, events[0].EventType())
	})

	t.Run("consumption keeps restock timestamp", func(t *testing.T) {
		item := newTestItem(t, 10, 0)
		before := item.LastRestockedAt

		require.NoError(t, item.Adjust(-4, "", time.Now()))
		assert.Equal(t, 6, item.Quantity)
		assert.Equal(t, before, item.LastRestockedAt)
	})

	t.Run("going below zero is rejected and leaves the item unchanged", func(t *testing.T) {
		item := newTestItem(t, 3, 0)

		err := item.Adjust(-4, "", time.Now())
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, 1, item.Version)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("draining to exactly zero is allowed", func(t *testing.T) {
		item := newTestItem(t, 3, 0)
		require.NoError(t, item.Adjust(-3, "", time.Now()))
		assert.Equal(t, 0, item.Quantity)
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		item := newTestItem(t, 3, 0)
		err := item.Adjust(0, "", time.Now())
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_ADJUSTMENT", ""))
	})

	t.Run("low stock event when reaching reorder point", func(t *testing.T) {
		item := newTestItem(t, 12, 10)
		require.NoError(t, item.Adjust(-2, "", time.Now()))

		var types []string
		for _, e := range item.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{EventTypeInventoryAdjusted, EventTypeInventoryLowStock}, types)
	})
}

func TestInventoryItem_Deduct(t *testing.T) {
	item := newTestItem(t, 5, 0)

	require.NoError(t, item.Deduct(5))
	assert.Equal(t, 0, item.Quantity)

	assert.ErrorIs(t, item.Deduct(1), shared.ErrInsufficientStock)
	assert.ErrorIs(t, item.Deduct(0), shared.NewDomainError("INVALID_QUANTITY", ""))
}

func TestInventoryItem_IsLowStock(t *testing.T) {
	assert.True(t, newTestItem(t, 10, 20).IsLowStock())
	assert.True(t, newTestItem(t, 10, 10).IsLowStock())
	assert.False(t, newTestItem(t, 50, 10).IsLowStock())
}

func TestInventoryItem_Update(t *testing.T) {
	item := newTestItem(t, 5, 0)
	loc := "  B2 "
	rp := 3
	require.NoError(t, item.Update(Details{Location: &loc, ReorderPoint: &rp}))
	assert.Equal(t, "B2", item.Location)
	assert.Equal(t, 3, item.ReorderPoint)
	assert.Equal(t, 2, item.Version)

	bad := -1
	assert.Error(t, item.Update(Details{ReorderPoint: &bad}))
}

func TestInventoryItem_StockValue(t *testing.T) {
	item := newTestItem(t, 4, 0)
	assert.True(t, item.StockValue().IsZero())

	item.Product = &catalog.Product{SKU: "SKU1", Name: "Widget", Price: decimal.NewFromFloat(2.5)}
	assert.True(t, item.StockValue().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "SKU1", item.SKU())
	assert.Equal(t, "Widget", item.Name())
}
