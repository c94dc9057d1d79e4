package report

import (
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
)

var testRange = DateRange{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
}

func salesOrder(total int64, status order.Status, items ...order.Item) order.Order {
	return order.Order{
		TotalAmount: decimal.NewFromInt(total),
		Status:      status,
		Items:       items,
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" Sales ")
	require.NoError(t, err)
	assert.Equal(t, TypeSales, typ)
	assert.True(t, typ.RequiresDateRange())

	typ, err = ParseType("inventory")
	require.NoError(t, err)
	assert.False(t, typ.RequiresDateRange())

	_, err = ParseType("profit")
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_REPORT_TYPE", ""))
	_, err = ParseType("")
	assert.Error(t, err)
}

func TestNewDateRange(t *testing.T) {
	_, err := NewDateRange(testRange.Start, testRange.End)
	require.NoError(t, err)

	_, err = NewDateRange(testRange.End, testRange.Start)
	assert.Error(t, err)

	_, err = NewDateRange(time.Time{}, testRange.End)
	assert.Error(t, err)
}

func TestBuildSalesReport(t *testing.T) {
	t.Run("two orders of 100 and 200", func(t *testing.T) {
		rep := BuildSalesReport(testRange, []order.Order{
			salesOrder(100, order.StatusPending,
				order.Item{SKU: "A", Category: "Tools", Quantity: 2},
				order.Item{SKU: "B", Quantity: 1}),
			salesOrder(200, order.StatusFulfilled,
				order.Item{SKU: "A", Category: "Tools", Quantity: 3}),
		})

		assert.True(t, rep.TotalSales.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, 2, rep.NumberOfOrders)
		assert.True(t, rep.AverageOrderValue.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, map[string]int{"A": 5, "B": 1}, rep.SalesByProduct)
		assert.Equal(t, map[string]int{"Tools": 5, catalog.DefaultCategory: 1}, rep.SalesByCategory)
	})

	t.Run("no orders yields zero average", func(t *testing.T) {
		rep := BuildSalesReport(testRange, nil)
		assert.True(t, rep.TotalSales.IsZero())
		assert.Equal(t, 0, rep.NumberOfOrders)
		assert.True(t, rep.AverageOrderValue.IsZero())
		assert.NotNil(t, rep.SalesByProduct)
	})

	t.Run("cancelled orders are excluded", func(t *testing.T) {
		rep := BuildSalesReport(testRange, []order.Order{
			salesOrder(100, order.StatusCancelled, order.Item{SKU: "A", Quantity: 1}),
			salesOrder(50, order.StatusPending, order.Item{SKU: "A", Quantity: 1}),
		})
		assert.Equal(t, 1, rep.NumberOfOrders)
		assert.True(t, rep.TotalSales.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, rep.SalesByProduct["A"])
	})

	t.Run("average is rounded to cents", func(t *testing.T) {
		rep := BuildSalesReport(testRange, []order.Order{
			salesOrder(10, order.StatusPending),
			salesOrder(10, order.StatusPending),
			salesOrder(0, order.StatusPending),
		})
		assert.Equal(t, "6.67", rep.AverageOrderValue.StringFixed(2))
	})
}

func TestBuildInventoryReport(t *testing.T) {
	low := inventory.InventoryItem{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}},
		Quantity:          10,
		ReorderPoint:      20,
		Location:          "A1",
		Product:           &catalog.Product{SKU: "LOW", Name: "Low item", Price: decimal.NewFromInt(2)},
	}
	healthy := inventory.InventoryItem{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: uuid.New()}},
		Quantity:          50,
		ReorderPoint:      10,
		Product:           &catalog.Product{SKU: "OK", Name: "Healthy item", Price: decimal.NewFromFloat(1.5)},
	}

	at := time.Now()
	rep := BuildInventoryReport([]inventory.InventoryItem{low, healthy}, at)

	assert.Equal(t, 2, rep.TotalItems)
	assert.Equal(t, 60, rep.TotalUnits)
	assert.True(t, rep.TotalInventoryValue.Equal(decimal.NewFromInt(95)), rep.TotalInventoryValue.String())
	require.Len(t, rep.LowStockItems, 1)
	assert.Equal(t, low.ID, rep.LowStockItems[0].ID)
	assert.Equal(t, "Low item", rep.LowStockItems[0].Name)
	assert.Equal(t, 10, rep.LowStockItems[0].Quantity)

	empty := BuildInventoryReport(nil, at)
	assert.True(t, empty.TotalInventoryValue.IsZero())
	assert.NotNil(t, empty.LowStockItems)
}

func fulfilledOrder(created time.Time, after time.Duration) order.Order {
	at := created.Add(after)
	o := order.Order{Status: order.StatusFulfilled, FulfilledAt: &at}
	o.CreatedAt = created
	return o
}

func TestBuildFulfillmentReport(t *testing.T) {
	created := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	rep := BuildFulfillmentReport(testRange, []order.Order{
		fulfilledOrder(created, 2*time.Hour),
		fulfilledOrder(created, 30*time.Hour),
		fulfilledOrder(created, 24*time.Hour),
		{Status: order.StatusFulfilled},
	}, 6)

	assert.Equal(t, 3, rep.TotalFulfilledOrders)
	assert.Equal(t, int64(6), rep.TotalOrders)
	assert.Equal(t, (56*time.Hour)/3, rep.AverageFulfillmentTime)
	assert.InDelta(t, 0.5, rep.FulfillmentRate, 1e-9)
	assert.Equal(t, 1, rep.OrdersWithLongFulfillmentTime)

	empty := BuildFulfillmentReport(testRange, nil, 0)
	assert.Equal(t, time.Duration(0), empty.AverageFulfillmentTime)
	assert.Equal(t, 0.0, empty.FulfillmentRate)
}
