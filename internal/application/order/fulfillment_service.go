package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

// FulfillmentConfig describes where parcels are picked up
type FulfillmentConfig struct {
	Pickup      integration.Contact
	PackageSize string
}

// FulfillmentService deducts stock, books a label and marks an order fulfilled
type FulfillmentService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	carrier        integration.Carrier
	commerce       integration.CommercePlatform
	eventPublisher shared.EventPublisher
	config         FulfillmentConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	carrier integration.Carrier,
	commerce integration.CommercePlatform,
	config FulfillmentConfig,
	logger *zap.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		txScope:   txScope,
		orderRepo: orderRepo,
		carrier:   carrier,
		commerce:  commerce,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *FulfillmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Fulfill ships an order. Stock deduction for every SKU, the label request
// and the order update commit together or not at all. A failed commerce
// sync after commit returns the fulfilled order with an INTEGRATION_FAILED error.
func (s *FulfillmentService) Fulfill(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fulfillment", "fulfill", "order_id", id.String())
	defer span.End()

	resp, err := s.fulfill(ctx, id)
	telemetry.RecordError(span, err)
	if resp != nil {
		telemetry.SetAttributes(span, "order_number", resp.OrderNumber, "tracking_number", resp.TrackingNumber)
	}
	return resp, err
}

func (s *FulfillmentService) fulfill(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanFulfill() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fulfill order in %s status", o.Status))
	}

	skus, quantities := o.QuantitiesBySKU()
	var stockEvents []shared.DomainEvent

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		stockEvents = nil
		weight := decimal.Zero

		for _, sku := range skus {
			qty := quantities[sku]
			items, err := repos.InventoryRepo().FindBySKU(ctx, sku)
			if err != nil {
				return err
			}
			if len(items) == 0 || !items[0].CanFulfill(qty) {
				return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Insufficient inventory for item: %s", sku))
			}

			item := &items[0]
			if err := repos.InventoryRepo().DeductWithLock(ctx, item.ID, item.Version, qty); err != nil {
				return err
			}
			if err := item.Deduct(qty); err != nil {
				return err
			}
			stockEvents = append(stockEvents, item.GetDomainEvents()...)

			if item.Product != nil {
				weight = weight.Add(item.Product.Dimensions.Weight.Mul(decimal.NewFromInt(int64(qty))))
			}
		}

		label, err := s.carrier.CreateLabel(ctx, s.labelRequest(o, weight))
		if err != nil {
			s.logger.Warn("Shipping label request failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
			return shared.NewIntegrationError("Shipping label request failed", err)
		}

		if err := o.MarkFulfilled(*label, s.now()); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		s.logger.Info("Order fulfillment rolled back",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order fulfilled",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("tracking_number", o.TrackingNumber))

	syncErr := syncOrderStatus(ctx, s.commerce, s.logger, o)

	publishEvents(ctx, s.eventPublisher, s.logger, append(o.GetDomainEvents(), stockEvents...)...)
	o.ClearDomainEvents()

	response := ToOrderResponse(o)
	return &response, syncErr
}

func (s *FulfillmentService) labelRequest(o *order.Order, weight decimal.Decimal) integration.LabelRequest {
	return integration.LabelRequest{
		Pickup: s.config.Pickup,
		Delivery: integration.Contact{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		PackageSize: s.config.PackageSize,
		Weight:      weight,
		Description: o.OrderNumber,
		Reference:   o.ID.String(),
	}
}
