package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/catalog"
)

// DimensionsInput is the shipping size of one unit
type DimensionsInput struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Weight decimal.Decimal `json:"weight"`
}

func (d DimensionsInput) toDomain() catalog.Dimensions {
	return catalog.Dimensions{Length: d.Length, Width: d.Width, Height: d.Height, Weight: d.Weight}
}

// CreateProductRequest represents a request to add a catalog product
type CreateProductRequest struct {
	SKU               string           `json:"sku" binding:"required,max=64"`
	Name              string           `json:"name" binding:"required,max=200"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	Category          string           `json:"category" binding:"max=100"`
	Tags              []string         `json:"tags"`
	Dimensions        *DimensionsInput `json:"dimensions"`
	ExternalProductID string           `json:"external_product_id" binding:"max=64"`
}

// UpdateProductRequest represents a partial product update. The SKU is immutable.
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,max=200"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Category          *string          `json:"category" binding:"omitempty,max=100"`
	Tags              []string         `json:"tags"`
	Dimensions        *DimensionsInput `json:"dimensions"`
	ExternalProductID *string          `json:"external_product_id" binding:"omitempty,max=64"`
}

// ProductListFilter is the query of a product listing
type ProductListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Category string `form:"category"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// DimensionsResponse is the unit size in API responses
type DimensionsResponse struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Weight decimal.Decimal `json:"weight"`
	Volume decimal.Decimal `json:"volume"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID          `json:"id"`
	SKU               string             `json:"sku"`
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	Price             decimal.Decimal    `json:"price"`
	Category          string             `json:"category"`
	Tags              []string           `json:"tags"`
	Dimensions        DimensionsResponse `json:"dimensions"`
	ExternalProductID string             `json:"external_product_id,omitempty"`
	Version           int                `json:"version"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Tags:        tags,
		Dimensions: DimensionsResponse{
			Length: p.Dimensions.Length,
			Width:  p.Dimensions.Width,
			Height: p.Dimensions.Height,
			Weight: p.Dimensions.Weight,
			Volume: p.Volume(),
		},
		ExternalProductID: p.ExternalProductID,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
