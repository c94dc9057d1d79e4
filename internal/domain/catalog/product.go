package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stockroom/backend/internal/domain/shared"
)

// DefaultCategory is used when a product has no category
const DefaultCategory = "Uncategorized"

// Dimensions holds the shipping size of one unit
type Dimensions struct {
	Length decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Width  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Height decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Weight decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
}

// Volume returns length * width * height
func (d Dimensions) Volume() decimal.Decimal {
	return d.Length.Mul(d.Width).Mul(d.Height)
}

func (d Dimensions) validate() error {
	for _, v := range []decimal.Decimal{d.Length, d.Width, d.Height, d.Weight} {
		if v.IsNegative() {
			return shared.NewDomainError("INVALID_DIMENSIONS", "Dimensions cannot be negative")
		}
	}
	return nil
}

// Product is a catalog entry identified by its SKU
type Product struct {
	shared.BaseAggregateRoot
	SKU               string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Price             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Category          string          `gorm:"type:varchar(100);not null;default:'Uncategorized';index"`
	Tags              []string        `gorm:"type:text;serializer:json"`
	Dimensions        Dimensions      `gorm:"embedded;embeddedPrefix:dim_"`
	ExternalProductID string          `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(sku, name string, price decimal.Decimal) (*Product, error) {
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Price:             price,
		Category:          DefaultCategory,
		Tags:              []string{},
	}, nil
}

// ProductDetails carries the optional fields of a product
type ProductDetails struct {
	Name              *string
	Description       *string
	Price             *decimal.Decimal
	Category          *string
	Tags              []string
	Dimensions        *Dimensions
	ExternalProductID *string
}

// Update applies the non-nil fields of d
func (p *Product) Update(d ProductDetails) error {
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		if err := validateName(name); err != nil {
			return err
		}
		p.Name = name
	}
	if d.Price != nil {
		if d.Price.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
		}
		p.Price = *d.Price
	}
	if d.Dimensions != nil {
		if err := d.Dimensions.validate(); err != nil {
			return err
		}
		p.Dimensions = *d.Dimensions
	}
	if d.Description != nil {
		p.Description = strings.TrimSpace(*d.Description)
	}
	if d.Category != nil {
		p.Category = NormalizeCategory(*d.Category)
	}
	if d.Tags != nil {
		p.Tags = normalizeTags(d.Tags)
	}
	if d.ExternalProductID != nil {
		p.ExternalProductID = strings.TrimSpace(*d.ExternalProductID)
	}
	p.IncrementVersion()
	p.Touch()
	return nil
}

// Volume returns the unit volume
func (p *Product) Volume() decimal.Decimal {
	return p.Dimensions.Volume()
}

// NormalizeSKU trims and upper-cases a SKU
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// NormalizeCategory title-cases a category so that report grouping is stable
func NormalizeCategory(category string) string {
	category = strings.Join(strings.Fields(category), " ")
	if category == "" {
		return DefaultCategory
	}
	// Casers are stateful, so one is built per call
	return cases.Title(language.English).String(category)
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	if strings.ContainsAny(sku, " \t\n") {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot contain whitespace")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
