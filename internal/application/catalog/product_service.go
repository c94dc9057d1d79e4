package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	sku := catalog.NormalizeSKU(req.SKU)
	exists, err := s.productRepo.ExistsBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(sku, req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	details := catalog.ProductDetails{
		Description: &req.Description,
		Category:    &req.Category,
		Tags:        req.Tags,
	}
	if req.ExternalProductID != "" {
		details.ExternalProductID = &req.ExternalProductID
	}
	if req.Dimensions != nil {
		dims := req.Dimensions.toDomain()
		details.Dimensions = &dims
	}
	if err := product.Update(details); err != nil {
		return nil, err
	}
	// Update bumped the version; an unsaved product stays at 1
	product.Version = 1

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	domainFilter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Category: filter.Category,
	}
	domainFilter.Normalize()

	products, total, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize), nil
}

// Update applies a partial update with an optimistic version check
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := catalog.ProductDetails{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Category:          req.Category,
		Tags:              req.Tags,
		ExternalProductID: req.ExternalProductID,
	}
	if req.Dimensions != nil {
		dims := req.Dimensions.toDomain()
		details.Dimensions = &dims
	}
	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("version", product.Version))

	response := ToProductResponse(product)
	return &response, nil
}
