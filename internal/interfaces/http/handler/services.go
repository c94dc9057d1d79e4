package handler

import (
	"context"
	"io"

	"github.com/google/uuid"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	integrationapp "github.com/stockroom/backend/internal/application/integration"
	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	orderapp "github.com/stockroom/backend/internal/application/order"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
)

// AuthService is the identity use case surface used by AuthHandler
type AuthService interface {
	Login(ctx context.Context, input identityapp.LoginInput) (*identityapp.AuthResult, error)
	Register(ctx context.Context, input identityapp.RegisterInput) (*identityapp.AuthResult, error)
	RefreshToken(ctx context.Context, input identityapp.RefreshTokenInput) (*identityapp.TokenResult, error)
	Logout(ctx context.Context, input identityapp.LogoutInput) error
	GetCurrentUser(ctx context.Context, claims *auth.Claims) (*identityapp.UserInfo, error)
}

// ProductService is the catalog use case surface used by ProductHandler
type ProductService interface {
	List(ctx context.Context, filter catalogapp.ProductListFilter) (shared.Paginated[catalogapp.ProductResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
}

// ProductImporter loads products from CSV
type ProductImporter interface {
	Import(ctx context.Context, r io.Reader, req catalogapp.ImportProductsRequest) (*catalogapp.ProductImportResult, error)
}

// InventoryService is the stock use case surface used by InventoryHandler
type InventoryService interface {
	List(ctx context.Context, filter inventoryapp.InventoryListFilter) (shared.Paginated[inventoryapp.InventoryItemResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.InventoryItemResponse, error)
	Create(ctx context.Context, req inventoryapp.CreateInventoryItemRequest) (*inventoryapp.InventoryItemResponse, error)
	Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateInventoryItemRequest) (*inventoryapp.InventoryItemResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Adjust(ctx context.Context, id uuid.UUID, req inventoryapp.AdjustInventoryRequest) (*inventoryapp.InventoryItemResponse, error)
}

// OrderService is the order use case surface used by OrderHandler
type OrderService interface {
	List(ctx context.Context, filter orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	Create(ctx context.Context, req orderapp.CreateOrderRequest) (*orderapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req orderapp.UpdateOrderStatusRequest) (*orderapp.OrderResponse, error)
	Track(ctx context.Context, id uuid.UUID) (*orderapp.TrackingResponse, error)
	Import(ctx context.Context, req orderapp.ImportOrdersRequest) (*orderapp.ImportResult, error)
}

// FulfillmentService ships orders
type FulfillmentService interface {
	Fulfill(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
}

// ReportService generates the analytics reports
type ReportService interface {
	Generate(ctx context.Context, q reportapp.ReportQuery) (*reportapp.ReportResponse, error)
	Sales(ctx context.Context, start, end string) (*reportapp.SalesReportResponse, error)
	Inventory(ctx context.Context) (*reportapp.InventoryReportResponse, error)
	Fulfillment(ctx context.Context, start, end string) (*reportapp.FulfillmentReportResponse, error)
}

// IntegrationService fronts the carrier and commerce platform on their own
type IntegrationService interface {
	Quote(ctx context.Context, req integrationapp.ShippingQuoteRequest) (*integrationapp.ShippingQuoteResponse, error)
	RegisterWebhook(ctx context.Context, req integrationapp.RegisterWebhookRequest) (*integrationapp.WebhookResponse, error)
}

var (
	_ AuthService        = (*identityapp.AuthService)(nil)
	_ ProductService     = (*catalogapp.ProductService)(nil)
	_ ProductImporter    = (*catalogapp.ProductImportService)(nil)
	_ InventoryService   = (*inventoryapp.InventoryService)(nil)
	_ OrderService       = (*orderapp.OrderService)(nil)
	_ FulfillmentService = (*orderapp.FulfillmentService)(nil)
	_ ReportService      = (*reportapp.ReportService)(nil)
	_ IntegrationService = (*integrationapp.IntegrationService)(nil)
)
