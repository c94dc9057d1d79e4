package shipping

import (
	"go.uber.org/zap"

	apporder "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/infrastructure/config"
)

// Client is a carrier that can also download the labels it issues
type Client interface {
	integration.Carrier
	apporder.LabelFetcher
}

// NewClient returns the Sendle client when the carrier is enabled and a StubCarrier otherwise
func NewClient(cfg config.CarrierConfig, logger *zap.Logger) (Client, error) {
	if !cfg.Enabled {
		logger.Info("Carrier disabled, using stub labels", zap.String("label_base_url", cfg.StubLabelBaseURL))
		return NewStubCarrier(cfg.StubLabelBaseURL, logger), nil
	}
	client, err := NewSendleClient(NewSendleConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Carrier enabled", zap.String("base_url", client.config.BaseURL))
	return client, nil
}

// PickupContact converts the configured warehouse address
func PickupContact(cfg config.CarrierConfig) integration.Contact {
	p := cfg.Pickup
	return integration.Contact{
		Name: p.Name,
		Address: order.Address{
			Street:  p.Street,
			City:    p.City,
			State:   p.State,
			ZipCode: p.ZipCode,
			Country: p.Country,
		},
	}
}

// FulfillmentConfig builds the fulfillment settings from carrier configuration
func FulfillmentConfig(cfg config.CarrierConfig) apporder.FulfillmentConfig {
	return apporder.FulfillmentConfig{
		Pickup:      PickupContact(cfg),
		PackageSize: cfg.DefaultPackageSize,
	}
}
