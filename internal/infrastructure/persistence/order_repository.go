package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/order"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items", itemsInOrder).First(&o, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Order")
	}
	return &o, nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(order_number) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "Order")
	}

	var orders []order.Order
	if err := paginate(query.Preload("Items", itemsInOrder), filter.Filter, OrderSortFields, "").Find(&orders).Error; err != nil {
		return nil, 0, translateError(err, "Order")
	}
	return orders, total, nil
}

func (r *GormOrderRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("external_order_id = ?", externalID).
		Count(&count).Error; err != nil {
		return false, translateError(err, "Order")
	}
	return count > 0, nil
}

// Create inserts the order header and its items in one statement batch
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return translateError(r.db.WithContext(ctx).Create(o).Error, "Order")
}

// SaveWithLock persists header fields only; items are immutable after creation
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]any{
			"status":             o.Status,
			"external_order_id":  o.ExternalOrderID,
			"total_amount":       o.TotalAmount,
			"shipping_label_url": o.ShippingLabelURL,
			"tracking_number":    o.TrackingNumber,
			"fulfilled_at":       o.FulfilledAt,
			"notes":              o.Notes,
			"version":            o.Version,
			"updated_at":         o.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "Order")
	}
	if result.RowsAffected == 0 {
		return conflictError("Order")
	}
	return nil
}

func (r *GormOrderRepository) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	var orders []order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", itemsInOrder).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, translateError(err, "Order")
	}
	return orders, nil
}

func (r *GormOrderRepository) FindFulfilledBetween(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	var orders []order.Order
	if err := r.db.WithContext(ctx).
		Where("fulfilled_at IS NOT NULL AND fulfilled_at >= ? AND fulfilled_at <= ?", from, to).
		Order("fulfilled_at ASC").
		Find(&orders).Error; err != nil {
		return nil, translateError(err, "Order")
	}
	return orders, nil
}

func (r *GormOrderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Count(&count).Error; err != nil {
		return 0, translateError(err, "Order")
	}
	return count, nil
}

func itemsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, sku ASC")
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
