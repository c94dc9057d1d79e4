package commerce

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
)

// NoopPlatform is used when no commerce platform is configured. Syncs succeed
// without doing anything; reads return nothing and writes that need a
// response fail with ErrNotConfigured.
type NoopPlatform struct {
	logger *zap.Logger
}

// NewNoopPlatform creates a new NoopPlatform
func NewNoopPlatform(logger *zap.Logger) *NoopPlatform {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopPlatform{logger: logger}
}

func (p *NoopPlatform) SyncOrderStatus(_ context.Context, o *order.Order) error {
	p.logger.Debug("commerce sync disabled, skipping order status",
		zap.String("order_number", o.OrderNumber),
		zap.String("status", string(o.Status)))
	return nil
}

func (p *NoopPlatform) SyncInventoryLevel(_ context.Context, externalItemID string, available int) error {
	p.logger.Debug("commerce sync disabled, skipping inventory level",
		zap.String("external_inventory_item_id", externalItemID),
		zap.Int("available", available))
	return nil
}

func (p *NoopPlatform) FetchOrders(context.Context, time.Time) ([]integration.PlatformOrder, error) {
	return []integration.PlatformOrder{}, nil
}

func (p *NoopPlatform) CreateWebhook(context.Context, string, string) (*integration.Webhook, error) {
	return nil, integration.ErrNotConfigured
}

var _ integration.CommercePlatform = (*NoopPlatform)(nil)
