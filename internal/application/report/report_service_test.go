package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	args := m.Called(ctx, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindFulfilledBetween(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type MockInventoryRepository struct {
	mock.Mock
	inventory.InventoryItemRepository
}

func (m *MockInventoryRepository) FindAllWithProducts(ctx context.Context) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func newReportService(t *testing.T) (*ReportService, *MockOrderRepository, *MockInventoryRepository) {
	t.Helper()
	orders := new(MockOrderRepository)
	items := new(MockInventoryRepository)
	svc := NewReportService(orders, items, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }
	return svc, orders, items
}

func testOrder(t *testing.T, status order.Status, lines ...order.ItemInput) order.Order {
	t.Helper()
	o, err := order.NewOrder("", order.Customer{Name: "Ada", Email: "ada@example.com"}, lines)
	require.NoError(t, err)
	if status != order.StatusPending {
		require.NoError(t, o.TransitionTo(status))
	}
	return *o
}

func TestReportService_Generate_InvalidType(t *testing.T) {
	svc, _, _ := newReportService(t)
	for _, typ := range []string{"", "profit"} {
		_, err := svc.Generate(context.Background(), ReportQuery{Type: typ})
		require.Error(t, err)
		assert.Equal(t, "Invalid report type", err.Error())
	}
}

func TestReportService_Sales(t *testing.T) {
	svc, orders, _ := newReportService(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)

	orders.On("FindCreatedBetween", mock.Anything, from, to).Return([]order.Order{
		testOrder(t, order.StatusPending,
			order.ItemInput{SKU: "A-1", Name: "A", Category: "Tools", Quantity: 2, Price: decimal.NewFromInt(10)},
			order.ItemInput{SKU: "B-1", Name: "B", Quantity: 1, Price: decimal.NewFromInt(5)}),
		testOrder(t, order.StatusProcessing,
			order.ItemInput{SKU: "A-1", Name: "A", Category: "Tools", Quantity: 1, Price: decimal.NewFromInt(10)}),
		testOrder(t, order.StatusCancelled,
			order.ItemInput{SKU: "A-1", Name: "A", Category: "Tools", Quantity: 9, Price: decimal.NewFromInt(10)}),
	}, nil)

	resp, err := svc.Generate(context.Background(), ReportQuery{Type: "sales", StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, "sales", resp.Type)

	sales, ok := resp.Data.(*SalesReportResponse)
	require.True(t, ok)
	assert.True(t, sales.TotalSales.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, 2, sales.NumberOfOrders)
	assert.True(t, sales.AverageOrderValue.Equal(decimal.RequireFromString("17.5")))
	assert.Equal(t, map[string]int{"A-1": 3, "B-1": 1}, sales.SalesByProduct)
	assert.Equal(t, map[string]int{"Tools": 3, catalog.DefaultCategory: 1}, sales.SalesByCategory)
}

func TestReportService_Sales_InvalidRange(t *testing.T) {
	svc, orders, _ := newReportService(t)
	cases := []ReportQuery{
		{Type: "sales"},
		{Type: "sales", StartDate: "2024-03-01"},
		{Type: "sales", StartDate: "yesterday", EndDate: "2024-03-01"},
		{Type: "fulfillment", StartDate: "2024-04-01", EndDate: "2024-03-01"},
	}
	for _, q := range cases {
		_, err := svc.Generate(context.Background(), q)
		require.Error(t, err)
		assert.Equal(t, "Invalid report type or date range", err.Error())
	}
	orders.AssertNotCalled(t, "FindCreatedBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_Inventory(t *testing.T) {
	svc, _, items := newReportService(t)
	p, err := catalog.NewProduct("A-1", "Anvil", decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	plenty, err := inventory.NewInventoryItem(p.ID, 10, "", 2)
	require.NoError(t, err)
	plenty.Product = p
	low, err := inventory.NewInventoryItem(p.ID, 1, "BACK", 2)
	require.NoError(t, err)
	low.Product = p
	items.On("FindAllWithProducts", mock.Anything).Return([]inventory.InventoryItem{*plenty, *low}, nil)

	resp, err := svc.Generate(context.Background(), ReportQuery{Type: "inventory"})
	require.NoError(t, err)

	inv := resp.Data.(*InventoryReportResponse)
	assert.True(t, inv.TotalInventoryValue.Equal(decimal.RequireFromString("27.5")))
	assert.Equal(t, 2, inv.TotalItems)
	require.Len(t, inv.LowStockItems, 1)
	assert.Equal(t, "BACK", inv.LowStockItems[0].Location)
	assert.Equal(t, "Anvil", inv.LowStockItems[0].Name)
}

func TestReportService_Inventory_RepositoryError(t *testing.T) {
	svc, _, items := newReportService(t)
	items.On("FindAllWithProducts", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := svc.Inventory(context.Background())
	require.Error(t, err)
	var domainErr *shared.DomainError
	assert.False(t, errors.As(err, &domainErr))
}

func TestReportService_Fulfillment(t *testing.T) {
	svc, orders, _ := newReportService(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	quick := testOrder(t, order.StatusPending, order.ItemInput{SKU: "A", Name: "A", Quantity: 1})
	require.NoError(t, quick.MarkFulfilled(order.ShippingLabel{TrackingNumber: "T1"}, quick.CreatedAt.Add(2*time.Hour)))
	slow := testOrder(t, order.StatusPending, order.ItemInput{SKU: "A", Name: "A", Quantity: 1})
	require.NoError(t, slow.MarkFulfilled(order.ShippingLabel{TrackingNumber: "T2"}, slow.CreatedAt.Add(30*time.Hour)))

	orders.On("FindFulfilledBetween", mock.Anything, from, to).Return([]order.Order{quick, slow}, nil)
	orders.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(4), nil)

	resp, err := svc.Fulfillment(context.Background(), "2024-03-01T00:00:00Z", "2024-03-02T00:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalFulfilledOrders)
	assert.Equal(t, int64(4), resp.TotalOrders)
	assert.Equal(t, (16 * time.Hour).Milliseconds(), resp.AverageFulfillmentTimeMs)
	assert.InDelta(t, 16.0, resp.AverageFulfillmentTimeHours, 1e-9)
	assert.InDelta(t, 0.5, resp.FulfillmentRate, 1e-9)
	assert.Equal(t, 1, resp.OrdersWithLongFulfillmentTime)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 999999999, time.UTC), r.End)

	r, err = ParseDateRange("2024-01-01T08:00:00+02:00", "2024-01-01T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour, r.End.Sub(r.Start))
}
