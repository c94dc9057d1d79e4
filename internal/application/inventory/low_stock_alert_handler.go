package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
)

// Alert types reported by LowStockAlertHandler
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// LowStockAlertHandler reports items that dropped to or below their reorder point
type LowStockAlertHandler struct {
	logger *zap.Logger
}

// NewLowStockAlertHandler creates a new LowStockAlertHandler
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeInventoryLowStock}
}

// Handle processes an InventoryLowStockEvent
func (h *LowStockAlertHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*inventory.InventoryLowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeInventoryLowStock),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeInventoryLowStock, event.EventType())
	}

	h.logger.Warn("stock at or below reorder point",
		zap.String("alert_type", AlertType(lowStock.Quantity)),
		zap.String("inventory_item_id", lowStock.InventoryItemID.String()),
		zap.String("product_id", lowStock.ProductID.String()),
		zap.String("sku", lowStock.SKU),
		zap.String("location", lowStock.Location),
		zap.Int("quantity", lowStock.Quantity),
		zap.Int("reorder_point", lowStock.ReorderPoint),
	)
	return nil
}

// AlertType classifies a low stock quantity
func AlertType(quantity int) string {
	if quantity <= 0 {
		return AlertTypeOutOfStock
	}
	return AlertTypeLowStock
}
