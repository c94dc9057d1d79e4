package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/report"
)

// ReportQuery is the query string of a report request
type ReportQuery struct {
	Type      string `form:"type"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// ReportResponse wraps a generated report with its type
type ReportResponse struct {
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generated_at"`
	Data        any       `json:"data"`
}

// DateRangeResponse is the window a report covers
type DateRangeResponse struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// SalesReportResponse represents a sales report
type SalesReportResponse struct {
	DateRange         DateRangeResponse `json:"date_range"`
	TotalSales        decimal.Decimal   `json:"total_sales"`
	NumberOfOrders    int               `json:"number_of_orders"`
	AverageOrderValue decimal.Decimal   `json:"average_order_value"`
	SalesByProduct    map[string]int    `json:"sales_by_product"`
	SalesByCategory   map[string]int    `json:"sales_by_category"`
}

// LowStockItemResponse is an item at or below its reorder point
type LowStockItemResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Location     string    `json:"location"`
	Quantity     int       `json:"quantity"`
	ReorderPoint int       `json:"reorder_point"`
}

// InventoryReportResponse represents an inventory valuation report
type InventoryReportResponse struct {
	TotalInventoryValue decimal.Decimal        `json:"total_inventory_value"`
	TotalItems          int                    `json:"total_items"`
	TotalUnits          int                    `json:"total_units"`
	LowStockItems       []LowStockItemResponse `json:"low_stock_items"`
}

// FulfillmentReportResponse represents a fulfillment performance report
type FulfillmentReportResponse struct {
	DateRange                     DateRangeResponse `json:"date_range"`
	TotalFulfilledOrders          int               `json:"total_fulfilled_orders"`
	TotalOrders                   int64             `json:"total_orders"`
	AverageFulfillmentTimeMs      int64             `json:"average_fulfillment_time_ms"`
	AverageFulfillmentTimeHours   float64           `json:"average_fulfillment_time_hours"`
	FulfillmentRate               float64           `json:"fulfillment_rate"`
	OrdersWithLongFulfillmentTime int               `json:"orders_with_long_fulfillment_time"`
}

func toDateRangeResponse(r report.DateRange) DateRangeResponse {
	return DateRangeResponse{StartDate: r.Start, EndDate: r.End}
}

// ToSalesReportResponse converts a domain sales report
func ToSalesReportResponse(r report.SalesReport) SalesReportResponse {
	return SalesReportResponse{
		DateRange:         toDateRangeResponse(r.Range),
		TotalSales:        r.TotalSales,
		NumberOfOrders:    r.NumberOfOrders,
		AverageOrderValue: r.AverageOrderValue,
		SalesByProduct:    r.SalesByProduct,
		SalesByCategory:   r.SalesByCategory,
	}
}

// ToInventoryReportResponse converts a domain inventory report
func ToInventoryReportResponse(r report.InventoryReport) InventoryReportResponse {
	low := make([]LowStockItemResponse, len(r.LowStockItems))
	for i, item := range r.LowStockItems {
		low[i] = LowStockItemResponse{
			ID:           item.ID,
			Name:         item.Name,
			SKU:          item.SKU,
			Location:     item.Location,
			Quantity:     item.Quantity,
			ReorderPoint: item.ReorderPoint,
		}
	}
	return InventoryReportResponse{
		TotalInventoryValue: r.TotalInventoryValue,
		TotalItems:          r.TotalItems,
		TotalUnits:          r.TotalUnits,
		LowStockItems:       low,
	}
}

// ToFulfillmentReportResponse converts a domain fulfillment report
func ToFulfillmentReportResponse(r report.FulfillmentReport) FulfillmentReportResponse {
	return FulfillmentReportResponse{
		DateRange:                     toDateRangeResponse(r.Range),
		TotalFulfilledOrders:          r.TotalFulfilledOrders,
		TotalOrders:                   r.TotalOrders,
		AverageFulfillmentTimeMs:      r.AverageFulfillmentTime.Milliseconds(),
		AverageFulfillmentTimeHours:   r.AverageFulfillmentTime.Hours(),
		FulfillmentRate:               r.FulfillmentRate,
		OrdersWithLongFulfillmentTime: r.OrdersWithLongFulfillmentTime,
	}
}
