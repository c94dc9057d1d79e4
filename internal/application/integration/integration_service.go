package integration

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/shared"
)

// IntegrationService exposes carrier quotes and commerce webhook registration
type IntegrationService struct {
	carrier  integration.Carrier
	commerce integration.CommercePlatform
	logger   *zap.Logger
}

// NewIntegrationService creates a new IntegrationService
func NewIntegrationService(carrier integration.Carrier, commerce integration.CommercePlatform, logger *zap.Logger) *IntegrationService {
	return &IntegrationService{
		carrier:  carrier,
		commerce: commerce,
		logger:   logger,
	}
}

// Quote asks the carrier for offers on a parcel
func (s *IntegrationService) Quote(ctx context.Context, req ShippingQuoteRequest) (*ShippingQuoteResponse, error) {
	pkg := integration.Package{
		Weight: req.Package.Weight,
		Length: req.Package.Length,
		Width:  req.Package.Width,
		Height: req.Package.Height,
	}
	if !pkg.Weight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package weight must be positive")
	}
	if pkg.Length.IsNegative() || pkg.Width.IsNegative() || pkg.Height.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package dimensions cannot be negative")
	}
	destination := req.Destination.ToDomain()
	if strings.TrimSpace(destination.ZipCode) == "" && strings.TrimSpace(destination.City) == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Destination needs a city or zip code")
	}

	quotes, err := s.carrier.Quote(ctx, integration.QuoteRequest{Package: pkg, Destination: destination})
	if err != nil {
		s.logger.Warn("Shipping quote failed", zap.Error(err))
		return nil, shared.NewIntegrationError("Shipping quote request failed", err)
	}
	return &ShippingQuoteResponse{Quotes: toQuoteResponses(quotes)}, nil
}

// RegisterWebhook subscribes address to a commerce platform topic such as "orders/create"
func (s *IntegrationService) RegisterWebhook(ctx context.Context, req RegisterWebhookRequest) (*WebhookResponse, error) {
	topic := strings.ToLower(strings.TrimSpace(req.Topic))
	if !strings.Contains(topic, "/") {
		return nil, shared.NewDomainError("INVALID_TOPIC", "Webhook topic must look like resource/event")
	}

	hook, err := s.commerce.CreateWebhook(ctx, topic, strings.TrimSpace(req.Address))
	if err != nil {
		s.logger.Warn("Webhook registration failed", zap.String("topic", topic), zap.Error(err))
		return nil, shared.NewIntegrationError("Commerce platform webhook registration failed", err)
	}

	s.logger.Info("Webhook registered",
		zap.String("webhook_id", hook.ID),
		zap.String("topic", hook.Topic),
		zap.String("address", hook.Address))

	return &WebhookResponse{
		ID:        hook.ID,
		Topic:     hook.Topic,
		Address:   hook.Address,
		CreatedAt: hook.CreatedAt,
	}, nil
}
