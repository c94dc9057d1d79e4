// Package report holds the read models and aggregation rules for operational reports.
// Builders are pure functions over already-loaded orders and inventory.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Type selects the report to generate
type Type string

const (
	TypeSales       Type = "sales"
	TypeInventory   Type = "inventory"
	TypeFulfillment Type = "fulfillment"
)

// IsValid checks if t is a known report type
func (t Type) IsValid() bool {
	switch t {
	case TypeSales, TypeInventory, TypeFulfillment:
		return true
	}
	return false
}

// RequiresDateRange reports whether the report is bounded by dates
func (t Type) RequiresDateRange() bool {
	return t == TypeSales || t == TypeFulfillment
}

// ParseType normalizes and validates a report type
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_REPORT_TYPE", "Invalid report type")
	}
	return t, nil
}

// LongFulfillmentThreshold marks an order as slow to fulfill
const LongFulfillmentThreshold = 24 * time.Hour

// DateRange is an inclusive time window
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates that start does not come after end
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return DateRange{}, shared.NewDomainError("INVALID_DATE_RANGE", "Invalid report type or date range")
	}
	return DateRange{Start: start, End: end}, nil
}

// SalesReport aggregates order totals over a date range
type SalesReport struct {
	Range             DateRange
	TotalSales        decimal.Decimal
	NumberOfOrders    int
	AverageOrderValue decimal.Decimal
	// SalesByProduct maps SKU to units sold
	SalesByProduct map[string]int
	// SalesByCategory maps category to units sold
	SalesByCategory map[string]int
}

// BuildSalesReport sums the given orders. Cancelled orders are excluded.
// AverageOrderValue is zero when no orders match.
func BuildSalesReport(r DateRange, orders []order.Order) SalesReport {
	rep := SalesReport{
		Range:             r,
		TotalSales:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
		SalesByProduct:    make(map[string]int),
		SalesByCategory:   make(map[string]int),
	}

	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		rep.NumberOfOrders++
		rep.TotalSales = rep.TotalSales.Add(o.TotalAmount)

		for _, item := range o.Items {
			rep.SalesByProduct[item.SKU] += item.Quantity
			category := item.Category
			if category == "" {
				category = catalog.DefaultCategory
			}
			rep.SalesByCategory[category] += item.Quantity
		}
	}

	if rep.NumberOfOrders > 0 {
		rep.AverageOrderValue = rep.TotalSales.Div(decimal.NewFromInt(int64(rep.NumberOfOrders))).Round(2)
	}
	return rep
}

// LowStockItem is one entry of the inventory report's low-stock list
type LowStockItem struct {
	ID           uuid.UUID
	SKU          string
	Name         string
	Location     string
	Quantity     int
	ReorderPoint int
}

// InventoryReport summarizes stock on hand
type InventoryReport struct {
	GeneratedAt         time.Time
	TotalInventoryValue decimal.Decimal
	TotalItems          int
	TotalUnits          int
	LowStockItems       []LowStockItem
}

// BuildInventoryReport values the stock and lists items at or below their reorder point
func BuildInventoryReport(items []inventory.InventoryItem, at time.Time) InventoryReport {
	rep := InventoryReport{
		GeneratedAt:         at,
		TotalInventoryValue: decimal.Zero,
		TotalItems:          len(items),
		LowStockItems:       make([]LowStockItem, 0),
	}

	for i := range items {
		item := &items[i]
		rep.TotalUnits += item.Quantity
		rep.TotalInventoryValue = rep.TotalInventoryValue.Add(item.StockValue())
		if item.IsLowStock() {
			rep.LowStockItems = append(rep.LowStockItems, LowStockItem{
				ID:           item.ID,
				SKU:          item.SKU(),
				Name:         item.Name(),
				Location:     item.Location,
				Quantity:     item.Quantity,
				ReorderPoint: item.ReorderPoint,
			})
		}
	}
	return rep
}

// FulfillmentReport measures how fast orders leave the warehouse
type FulfillmentReport struct {
	Range                         DateRange
	TotalFulfilledOrders          int
	TotalOrders                   int64
	AverageFulfillmentTime        time.Duration
	FulfillmentRate               float64
	OrdersWithLongFulfillmentTime int
}

// BuildFulfillmentReport aggregates orders fulfilled in range against the number
// of orders created in range. Averages and rates are zero when their divisor is zero.
func BuildFulfillmentReport(r DateRange, fulfilled []order.Order, totalOrders int64) FulfillmentReport {
	rep := FulfillmentReport{
		Range:       r,
		TotalOrders: totalOrders,
	}

	var total time.Duration
	for i := range fulfilled {
		o := &fulfilled[i]
		if o.FulfilledAt == nil {
			continue
		}
		d := o.FulfillmentDuration()
		rep.TotalFulfilledOrders++
		total += d
		if d > LongFulfillmentThreshold {
			rep.OrdersWithLongFulfillmentTime++
		}
	}

	if rep.TotalFulfilledOrders > 0 {
		rep.AverageFulfillmentTime = total / time.Duration(rep.TotalFulfilledOrders)
	}
	if totalOrders > 0 {
		rep.FulfillmentRate = float64(rep.TotalFulfilledOrders) / float64(totalOrders)
	}
	return rep
}
