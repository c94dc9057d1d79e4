package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/integration"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
)

// OrderService handles order business operations
type OrderService struct {
	orderRepo      order.OrderRepository
	productRepo    catalog.ProductRepository
	commerce       integration.CommercePlatform
	carrier        integration.Carrier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	commerce integration.CommercePlatform,
	carrier integration.Carrier,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		commerce:    commerce,
		carrier:     carrier,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderResponse], error) {
	domainFilter := order.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}
	domainFilter.Normalize()

	if filter.Status != "" {
		status := order.Status(strings.ToLower(strings.TrimSpace(filter.Status)))
		if !status.IsValid() {
			return shared.Paginated[OrderResponse]{}, shared.NewDomainError("INVALID_STATUS",
				fmt.Sprintf("Unknown order status: %s", filter.Status))
		}
		domainFilter.Status = status
	}

	orders, total, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return shared.NewPaginated(ToOrderResponses(orders), total, domainFilter.Page, domainFilter.PageSize), nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// Create creates a pending order and pushes its status to the commerce platform.
// When only the push fails the order is returned together with an
// INTEGRATION_FAILED error.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Invalid order data")
	}

	inputs := make([]order.ItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		item, err := s.resolveItem(ctx, in)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, item)
	}

	customer := order.Customer{
		Name:    req.Customer.Name,
		Email:   strings.TrimSpace(req.Customer.Email),
		Phone:   strings.TrimSpace(req.Customer.Phone),
		Address: req.Customer.Address.ToDomain(),
	}
	o, err := order.NewOrder(req.OrderNumber, customer, inputs)
	if err != nil {
		return nil, err
	}
	o.SetExternalOrderID(req.ExternalOrderID)
	o.Notes = strings.TrimSpace(req.Notes)

	if ext := o.ExternalID(); ext != "" {
		exists, err := s.orderRepo.ExistsByExternalID(ctx, ext)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Order with external id %s already exists", ext))
		}
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Int("items", len(o.Items)))

	s.publish(ctx, o.GetDomainEvents()...)
	o.ClearDomainEvents()

	response := ToOrderResponse(o)
	return &response, s.syncStatus(ctx, o)
}

// UpdateStatus applies a manual status transition
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.TransitionTo(order.Status(strings.ToLower(strings.TrimSpace(req.Status)))); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		o.Notes = strings.TrimSpace(*req.Notes)
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", o.Status.String()))

	s.publish(ctx, o.GetDomainEvents()...)
	o.ClearDomainEvents()

	response := ToOrderResponse(o)
	return &response, s.syncStatus(ctx, o)
}

// Track asks the carrier for the state of the order's parcel
func (s *OrderService) Track(ctx context.Context, id uuid.UUID) (*TrackingResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TrackingNumber == "" {
		return nil, shared.NewDomainError("INVALID_STATE", "Order has no tracking number")
	}

	info, err := s.carrier.Track(ctx, o.TrackingNumber)
	if err != nil {
		s.logger.Warn("Shipment tracking failed",
			zap.String("order_id", o.ID.String()),
			zap.String("tracking_number", o.TrackingNumber),
			zap.Error(err))
		return nil, shared.NewIntegrationError("Shipment tracking request failed", err)
	}

	events := make([]TrackingEventResponse, len(info.Events))
	for i, e := range info.Events {
		events[i] = TrackingEventResponse{
			Type:        e.Type,
			Description: e.Description,
			Location:    e.Location,
			OccurredAt:  e.OccurredAt,
		}
	}
	return &TrackingResponse{
		OrderID:        o.ID,
		TrackingNumber: o.TrackingNumber,
		State:          info.State,
		Events:         events,
	}, nil
}

// Import creates local orders for commerce platform orders not seen before
func (s *OrderService) Import(ctx context.Context, req ImportOrdersRequest) (*ImportResult, error) {
	var since time.Time
	if req.Since != nil {
		since = *req.Since
	}

	platformOrders, err := s.commerce.FetchOrders(ctx, since)
	if err != nil {
		s.logger.Warn("Fetching commerce orders failed", zap.Error(err))
		return nil, shared.NewIntegrationError("Commerce platform request failed", err)
	}

	result := &ImportResult{Orders: []OrderResponse{}}
	for _, po := range platformOrders {
		if po.ID == "" {
			result.Skipped++
			continue
		}
		exists, err := s.orderRepo.ExistsByExternalID(ctx, po.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		o, err := s.fromPlatformOrder(ctx, po)
		if err != nil {
			s.logger.Warn("Skipping unimportable commerce order",
				zap.String("external_order_id", po.ID),
				zap.Error(err))
			result.Failed++
			continue
		}
		if err := s.orderRepo.Create(ctx, o); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		s.publish(ctx, o.GetDomainEvents()...)
		o.ClearDomainEvents()
		result.Imported++
		result.Orders = append(result.Orders, ToOrderResponse(o))
	}

	s.logger.Info("Commerce orders imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *OrderService) fromPlatformOrder(ctx context.Context, po integration.PlatformOrder) (*order.Order, error) {
	inputs := make([]order.ItemInput, 0, len(po.Items))
	for _, line := range po.Items {
		price := line.Price
		item, err := s.resolveItem(ctx, OrderItemInput{
			SKU:      line.SKU,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    &price,
		})
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, item)
	}

	o, err := order.NewOrder(order.GenerateOrderNumber(po.CreatedAt), order.Customer{
		Name:    po.CustomerName,
		Email:   po.CustomerEmail,
		Phone:   po.CustomerPhone,
		Address: po.Address,
	}, inputs)
	if err != nil {
		return nil, err
	}
	o.SetExternalOrderID(po.ID)
	o.Notes = po.Note
	return o, nil
}

// resolveItem fills name, category and price of a line from the catalog.
// Lines for SKUs unknown to the catalog keep what the caller sent.
func (s *OrderService) resolveItem(ctx context.Context, in OrderItemInput) (order.ItemInput, error) {
	var product *catalog.Product
	switch {
	case in.ProductID != nil:
		p, err := s.productRepo.FindByID(ctx, *in.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return order.ItemInput{}, shared.NewDomainError("INVALID_PRODUCT",
					fmt.Sprintf("Product not found: %s", in.ProductID.String()))
			}
			return order.ItemInput{}, err
		}
		product = p
	case strings.TrimSpace(in.SKU) != "":
		p, err := s.productRepo.FindBySKU(ctx, in.SKU)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return order.ItemInput{}, err
		}
		product = p
	}

	item := order.ItemInput{SKU: in.SKU, Name: in.Name, Quantity: in.Quantity}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if product != nil {
		item.ProductID = product.ID
		item.SKU = product.SKU
		item.Category = product.Category
		if strings.TrimSpace(item.Name) == "" {
			item.Name = product.Name
		}
		if in.Price == nil {
			item.Price = product.Price
		}
	}
	return item, nil
}

// syncStatus pushes the order status to the commerce platform
func (s *OrderService) syncStatus(ctx context.Context, o *order.Order) error {
	return syncOrderStatus(ctx, s.commerce, s.logger, o)
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	publishEvents(ctx, s.eventPublisher, s.logger, events...)
}

func syncOrderStatus(ctx context.Context, commerce integration.CommercePlatform, logger *zap.Logger, o *order.Order) error {
	if o.ExternalID() == "" {
		return nil
	}
	if err := commerce.SyncOrderStatus(ctx, o); err != nil {
		logger.Warn("Commerce order status sync failed",
			zap.String("order_id", o.ID.String()),
			zap.String("external_order_id", o.ExternalID()),
			zap.String("status", o.Status.String()),
			zap.Error(err))
		return shared.NewIntegrationError("Commerce platform order sync failed", err)
	}
	return nil
}

func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
