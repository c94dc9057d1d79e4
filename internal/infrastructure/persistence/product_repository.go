package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/catalog"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: tx}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return &p, nil
}

func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).First(&p, "sku = ?", catalog.NormalizeSKU(sku)).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return &p, nil
}

func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translateError(err, "Product")
	}
	return products, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", catalog.NormalizeCategory(filter.Category))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "Product")
	}

	var products []catalog.Product
	if err := paginate(query, filter.Filter, ProductSortFields, "").Find(&products).Error; err != nil {
		return nil, 0, translateError(err, "Product")
	}
	return products, total, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error, "Product")
}

// Save writes every column of p when the stored version is p.Version-1
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if result.Error != nil {
		return translateError(result.Error, "Product")
	}
	if result.RowsAffected == 0 {
		return conflictError("Product")
	}
	return nil
}

func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("sku = ?", catalog.NormalizeSKU(sku)).
		Count(&count).Error; err != nil {
		return false, translateError(err, "Product")
	}
	return count > 0, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
