package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroom/backend/internal/domain/order"
)

// AddressInput is a postal address in a request
type AddressInput struct {
	Street  string `json:"street" binding:"max=200"`
	City    string `json:"city" binding:"max=100"`
	State   string `json:"state" binding:"max=100"`
	ZipCode string `json:"zip_code" binding:"max=20"`
	Country string `json:"country" binding:"max=100"`
}

// ToDomain converts the input to a domain address
func (a AddressInput) ToDomain() order.Address {
	return order.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
}

// CustomerInput is the buyer of a new order
type CustomerInput struct {
	Name    string       `json:"name" binding:"required,max=200"`
	Email   string       `json:"email" binding:"omitempty,email"`
	Phone   string       `json:"phone" binding:"max=50"`
	Address AddressInput `json:"address"`
}

// OrderItemInput is one requested line. Name, category and price default to
// the catalog product found by product_id or sku.
type OrderItemInput struct {
	ProductID *uuid.UUID       `json:"product_id"`
	SKU       string           `json:"sku" binding:"max=64"`
	Name      string           `json:"name" binding:"max=200"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	OrderNumber     string           `json:"order_number" binding:"max=50"`
	ExternalOrderID string           `json:"external_order_id" binding:"max=64"`
	Customer        CustomerInput    `json:"customer"`
	Items           []OrderItemInput `json:"items"`
	Notes           string           `json:"notes"`
}

// UpdateOrderStatusRequest represents a manual status change
type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// ImportOrdersRequest selects which commerce orders to import
type ImportOrdersRequest struct {
	Since *time.Time `json:"since"`
}

// OrderListFilter is the query of an order listing
type OrderListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// AddressResponse is a postal address
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// CustomerResponse is the buyer of an order
type CustomerResponse struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Address AddressResponse `json:"address"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	ExternalOrderID  string              `json:"external_order_id,omitempty"`
	Customer         CustomerResponse    `json:"customer"`
	Items            []OrderItemResponse `json:"items"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Status           string              `json:"status"`
	ShippingLabelURL string              `json:"shipping_label_url,omitempty"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	FulfilledAt      *time.Time          `json:"fulfilled_at,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	Version          int                 `json:"version"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order to its response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:       item.ID,
			SKU:      item.SKU,
			Name:     item.Name,
			Category: item.Category,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal(),
		}
		if item.ProductID != uuid.Nil {
			id := item.ProductID
			items[i].ProductID = &id
		}
	}
	a := o.Customer.Address
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		ExternalOrderID: o.ExternalID(),
		Customer: CustomerResponse{
			Name:  o.Customer.Name,
			Email: o.Customer.Email,
			Phone: o.Customer.Phone,
			Address: AddressResponse{
				Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country,
			},
		},
		Items:            items,
		TotalAmount:      o.TotalAmount,
		Status:           o.Status.String(),
		ShippingLabelURL: o.ShippingLabelURL,
		TrackingNumber:   o.TrackingNumber,
		FulfilledAt:      o.FulfilledAt,
		Notes:            o.Notes,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// ImportResult reports the outcome of an order import
type ImportResult struct {
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Orders   []OrderResponse `json:"orders"`
}

// TrackingEventResponse is one carrier scan
type TrackingEventResponse struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TrackingResponse is the carrier's view of an order's parcel
type TrackingResponse struct {
	OrderID        uuid.UUID               `json:"order_id"`
	TrackingNumber string                  `json:"tracking_number"`
	State          string                  `json:"state"`
	Events         []TrackingEventResponse `json:"events"`
}
