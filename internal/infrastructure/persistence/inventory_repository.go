package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/inventory"
)

const productIDsBySKU = "product_id IN (SELECT id FROM products WHERE sku = ?)"

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *GormInventoryItemRepository) WithTx(tx *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: tx}
}

func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Inventory item")
	}
	return &item, nil
}

func (r *GormInventoryItemRepository) FindAll(ctx context.Context, filter inventory.InventoryFilter) ([]inventory.InventoryItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&inventory.InventoryItem{})
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.SKU != "" {
		query = query.Where(productIDsBySKU, catalog.NormalizeSKU(filter.SKU))
	}
	if filter.LowStock {
		query = query.Where("quantity <= reorder_point")
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`product_id IN (SELECT id FROM products WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\')`,
			pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "Inventory item")
	}

	var items []inventory.InventoryItem
	if err := paginate(query.Preload("Product"), filter.Filter, InventorySortFields, "").Find(&items).Error; err != nil {
		return nil, 0, translateError(err, "Inventory item")
	}
	return items, total, nil
}

func (r *GormInventoryItemRepository) FindAllWithProducts(ctx context.Context) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).Preload("Product").Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, translateError(err, "Inventory item")
	}
	return items, nil
}

func (r *GormInventoryItemRepository) FindBySKU(ctx context.Context, sku string) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where(productIDsBySKU, catalog.NormalizeSKU(sku)).
		Order("quantity DESC").
		Find(&items).Error; err != nil {
		return nil, translateError(err, "Inventory item")
	}
	return items, nil
}

func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	return translateError(r.db.WithContext(ctx).Omit("Product").Create(item).Error, "Inventory item")
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]any{
			"quantity":                   item.Quantity,
			"location":                   item.Location,
			"reorder_point":              item.ReorderPoint,
			"last_restocked_at":          item.LastRestockedAt,
			"external_inventory_item_id": item.ExternalInventoryItemID,
			"version":                    item.Version,
			"updated_at":                 item.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "Inventory item")
	}
	if result.RowsAffected == 0 {
		return conflictError("Inventory item")
	}
	return nil
}

// DeductWithLock is a single conditional UPDATE so concurrent fulfillments
// can never drive quantity below zero.
func (r *GormInventoryItemRepository) DeductWithLock(ctx context.Context, id uuid.UUID, expectedVersion, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryItem{}).
		Where("id = ? AND version = ? AND quantity >= ?", id, expectedVersion, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error, "Inventory item")
	}
	if result.RowsAffected == 0 {
		return conflictError("Inventory item")
	}
	return nil
}

func (r *GormInventoryItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "Inventory item")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "Inventory item")
	}
	return nil
}

var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
