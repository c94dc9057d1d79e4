package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/report"
)

// ReportService loads orders and inventory and hands them to the report builders
type ReportService struct {
	orderRepo     order.OrderRepository
	inventoryRepo inventory.InventoryItemRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	orderRepo order.OrderRepository,
	inventoryRepo inventory.InventoryItemRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// Generate dispatches on the report type of q
func (s *ReportService) Generate(ctx context.Context, q ReportQuery) (*ReportResponse, error) {
	t, err := report.ParseType(q.Type)
	if err != nil {
		return nil, err
	}

	var data any
	switch t {
	case report.TypeSales:
		data, err = s.Sales(ctx, q.StartDate, q.EndDate)
	case report.TypeInventory:
		data, err = s.Inventory(ctx)
	case report.TypeFulfillment:
		data, err = s.Fulfillment(ctx, q.StartDate, q.EndDate)
	}
	if err != nil {
		return nil, err
	}
	return &ReportResponse{Type: string(t), GeneratedAt: s.now(), Data: data}, nil
}

// Sales aggregates non-cancelled orders created in the range
func (s *ReportService) Sales(ctx context.Context, start, end string) (*SalesReportResponse, error) {
	r, err := ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindCreatedBetween(ctx, r.Start, r.End)
	if err != nil {
		s.logger.Error("Failed to load orders for sales report", zap.Error(err))
		return nil, err
	}
	response := ToSalesReportResponse(report.BuildSalesReport(r, orders))
	return &response, nil
}

// Inventory values every stocked item at its product price
func (s *ReportService) Inventory(ctx context.Context) (*InventoryReportResponse, error) {
	items, err := s.inventoryRepo.FindAllWithProducts(ctx)
	if err != nil {
		s.logger.Error("Failed to load inventory for inventory report", zap.Error(err))
		return nil, err
	}
	response := ToInventoryReportResponse(report.BuildInventoryReport(items, s.now()))
	return &response, nil
}

// Fulfillment compares orders fulfilled in the range with orders created in it
func (s *ReportService) Fulfillment(ctx context.Context, start, end string) (*FulfillmentReportResponse, error) {
	r, err := ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}
	fulfilled, err := s.orderRepo.FindFulfilledBetween(ctx, r.Start, r.End)
	if err != nil {
		s.logger.Error("Failed to load fulfilled orders for fulfillment report", zap.Error(err))
		return nil, err
	}
	total, err := s.orderRepo.CountCreatedBetween(ctx, r.Start, r.End)
	if err != nil {
		s.logger.Error("Failed to count orders for fulfillment report", zap.Error(err))
		return nil, err
	}
	response := ToFulfillmentReportResponse(report.BuildFulfillmentReport(r, fulfilled, total))
	return &response, nil
}
