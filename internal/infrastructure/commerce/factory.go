package commerce

import (
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/infrastructure/config"
)

// NewPlatform returns the Shopify client when commerce sync is enabled and a NoopPlatform otherwise
func NewPlatform(cfg config.CommerceConfig, logger *zap.Logger) (integration.CommercePlatform, error) {
	if !cfg.Enabled {
		logger.Info("Commerce platform sync disabled")
		return NewNoopPlatform(logger), nil
	}
	client, err := NewShopifyClient(NewShopifyConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Commerce platform sync enabled", zap.String("shop", client.config.BaseURL))
	return client, nil
}
