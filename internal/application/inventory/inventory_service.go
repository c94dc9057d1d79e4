package inventory

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
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
)

// InventoryService handles inventory business operations. Every change to
// an item linked to the commerce platform is pushed there after it is saved.
type InventoryService struct {
	repo           inventory.InventoryItemRepository
	productRepo    catalog.ProductRepository
	commerce       integration.CommercePlatform
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	repo inventory.InventoryItemRepository,
	productRepo catalog.ProductRepository,
	commerce integration.CommercePlatform,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		repo:        repo,
		productRepo: productRepo,
		commerce:    commerce,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List retrieves inventory items with filtering and pagination
func (s *InventoryService) List(ctx context.Context, filter InventoryListFilter) (shared.Paginated[InventoryItemResponse], error) {
	domainFilter := inventory.InventoryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Location: strings.TrimSpace(filter.Location),
		SKU:      filter.SKU,
		LowStock: filter.LowStock,
	}
	domainFilter.Normalize()

	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return shared.Paginated[InventoryItemResponse]{}, shared.NewDomainError("INVALID_PRODUCT_ID", "Invalid product ID format")
		}
		domainFilter.ProductID = &id
	}

	items, total, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[InventoryItemResponse]{}, err
	}
	return shared.NewPaginated(ToInventoryItemResponses(items), total, domainFilter.Page, domainFilter.PageSize), nil
}

// GetByID retrieves an inventory item by ID
func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*InventoryItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInventoryItemResponse(item)
	return &response, nil
}

// Create stocks a catalog product at a location
func (s *InventoryService) Create(ctx context.Context, req CreateInventoryItemRequest) (*InventoryItemResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Product not found: %s", req.ProductID))
		}
		return nil, err
	}

	item, err := inventory.NewInventoryItem(product.ID, req.Quantity, req.Location, req.ReorderPoint)
	if err != nil {
		return nil, err
	}
	item.ExternalInventoryItemID = strings.TrimSpace(req.ExternalInventoryItemID)
	item.Product = product

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("Inventory item created",
		zap.String("inventory_item_id", item.ID.String()),
		zap.String("sku", product.SKU),
		zap.String("location", item.Location),
		zap.Int("quantity", item.Quantity))

	response := ToInventoryItemResponse(item)
	return &response, s.syncLevel(ctx, item, item.Quantity)
}

// Update changes location, reorder point or the commerce link of an item
func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req UpdateInventoryItemRequest) (*InventoryItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.Update(inventory.Details{
		Location:                req.Location,
		ReorderPoint:            req.ReorderPoint,
		ExternalInventoryItemID: req.ExternalInventoryItemID,
	}); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}

	if req.ReorderPoint != nil && item.IsLowStock() {
		s.publish(ctx, inventory.NewInventoryLowStockEvent(item))
	}

	response := ToInventoryItemResponse(item)
	return &response, s.syncLevel(ctx, item, item.Quantity)
}

// Delete removes an item and reports zero availability to the commerce platform
func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Inventory item deleted", zap.String("inventory_item_id", id.String()))
	return s.syncLevel(ctx, item, 0)
}

// Adjust applies a signed delta. Results below zero are rejected and a
// concurrent modification of the same item yields CONCURRENCY_CONFLICT.
func (s *InventoryService) Adjust(ctx context.Context, id uuid.UUID, req AdjustInventoryRequest) (*InventoryItemResponse, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldQuantity := item.Quantity
	if err := item.Adjust(req.Adjustment, strings.TrimSpace(req.Reason), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("Inventory adjusted",
		zap.String("inventory_item_id", item.ID.String()),
		zap.Int("old_quantity", oldQuantity),
		zap.Int("new_quantity", item.Quantity),
		zap.String("reason", req.Reason))

	s.publish(ctx, item.GetDomainEvents()...)
	item.ClearDomainEvents()

	response := ToInventoryItemResponse(item)
	return &response, s.syncLevel(ctx, item, item.Quantity)
}

func (s *InventoryService) syncLevel(ctx context.Context, item *inventory.InventoryItem, available int) error {
	if item.ExternalInventoryItemID == "" {
		return nil
	}
	if err := s.commerce.SyncInventoryLevel(ctx, item.ExternalInventoryItemID, available); err != nil {
		s.logger.Warn("Commerce inventory sync failed",
			zap.String("inventory_item_id", item.ID.String()),
			zap.String("external_inventory_item_id", item.ExternalInventoryItemID),
			zap.Int("available", available),
			zap.Error(err))
		return shared.NewIntegrationError("Commerce platform inventory sync failed", err)
	}
	return nil
}

func (s *InventoryService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
