package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	integrationapp "github.com/stockroom/backend/internal/application/integration"
	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	orderapp "github.com/stockroom/backend/internal/application/order"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func testBase() BaseHandler {
	return NewBaseHandler(zap.NewNop(), false)
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Login(ctx context.Context, in identityapp.LoginInput) (*identityapp.AuthResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*identityapp.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, in identityapp.RegisterInput) (*identityapp.AuthResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*identityapp.AuthResult)
	return r, args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, in identityapp.RefreshTokenInput) (*identityapp.TokenResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*identityapp.TokenResult)
	return r, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, in identityapp.LogoutInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockAuthService) GetCurrentUser(ctx context.Context, claims *auth.Claims) (*identityapp.UserInfo, error) {
	args := m.Called(ctx, claims)
	r, _ := args.Get(0).(*identityapp.UserInfo)
	return r, args.Error(1)
}

type MockProductService struct{ mock.Mock }

func (m *MockProductService) List(ctx context.Context, f catalogapp.ProductListFilter) (shared.Paginated[catalogapp.ProductResponse], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(shared.Paginated[catalogapp.ProductResponse]), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*catalogapp.ProductResponse)
	return r, args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*catalogapp.ProductResponse)
	return r, args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	r, _ := args.Get(0).(*catalogapp.ProductResponse)
	return r, args.Error(1)
}

type MockProductImporter struct{ mock.Mock }

func (m *MockProductImporter) Import(ctx context.Context, r io.Reader, req catalogapp.ImportProductsRequest) (*catalogapp.ProductImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, string(body), req)
	res, _ := args.Get(0).(*catalogapp.ProductImportResult)
	return res, args.Error(1)
}

type MockInventoryService struct{ mock.Mock }

func (m *MockInventoryService) List(ctx context.Context, f inventoryapp.InventoryListFilter) (shared.Paginated[inventoryapp.InventoryItemResponse], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(shared.Paginated[inventoryapp.InventoryItemResponse]), args.Error(1)
}

func (m *MockInventoryService) GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.InventoryItemResponse, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*inventoryapp.InventoryItemResponse)
	return r, args.Error(1)
}

func (m *MockInventoryService) Create(ctx context.Context, req inventoryapp.CreateInventoryItemRequest) (*inventoryapp.InventoryItemResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*inventoryapp.InventoryItemResponse)
	return r, args.Error(1)
}

func (m *MockInventoryService) Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateInventoryItemRequest) (*inventoryapp.InventoryItemResponse, error) {
	args := m.Called(ctx, id, req)
	r, _ := args.Get(0).(*inventoryapp.InventoryItemResponse)
	return r, args.Error(1)
}

func (m *MockInventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInventoryService) Adjust(ctx context.Context, id uuid.UUID, req inventoryapp.AdjustInventoryRequest) (*inventoryapp.InventoryItemResponse, error) {
	args := m.Called(ctx, id, req)
	r, _ := args.Get(0).(*inventoryapp.InventoryItemResponse)
	return r, args.Error(1)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) List(ctx context.Context, f orderapp.OrderListFilter) (shared.Paginated[orderapp.OrderResponse], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(shared.Paginated[orderapp.OrderResponse]), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*orderapp.OrderResponse)
	return r, args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, req orderapp.CreateOrderRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*orderapp.OrderResponse)
	return r, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req orderapp.UpdateOrderStatusRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	r, _ := args.Get(0).(*orderapp.OrderResponse)
	return r, args.Error(1)
}

func (m *MockOrderService) Track(ctx context.Context, id uuid.UUID) (*orderapp.TrackingResponse, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*orderapp.TrackingResponse)
	return r, args.Error(1)
}

func (m *MockOrderService) Import(ctx context.Context, req orderapp.ImportOrdersRequest) (*orderapp.ImportResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*orderapp.ImportResult)
	return r, args.Error(1)
}

type MockFulfillmentService struct{ mock.Mock }

func (m *MockFulfillmentService) Fulfill(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*orderapp.OrderResponse)
	return r, args.Error(1)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) Generate(ctx context.Context, q reportapp.ReportQuery) (*reportapp.ReportResponse, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*reportapp.ReportResponse)
	return r, args.Error(1)
}

func (m *MockReportService) Sales(ctx context.Context, start, end string) (*reportapp.SalesReportResponse, error) {
	args := m.Called(ctx, start, end)
	r, _ := args.Get(0).(*reportapp.SalesReportResponse)
	return r, args.Error(1)
}

func (m *MockReportService) Inventory(ctx context.Context) (*reportapp.InventoryReportResponse, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*reportapp.InventoryReportResponse)
	return r, args.Error(1)
}

func (m *MockReportService) Fulfillment(ctx context.Context, start, end string) (*reportapp.FulfillmentReportResponse, error) {
	args := m.Called(ctx, start, end)
	r, _ := args.Get(0).(*reportapp.FulfillmentReportResponse)
	return r, args.Error(1)
}

type MockIntegrationService struct{ mock.Mock }

func (m *MockIntegrationService) Quote(ctx context.Context, req integrationapp.ShippingQuoteRequest) (*integrationapp.ShippingQuoteResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*integrationapp.ShippingQuoteResponse)
	return r, args.Error(1)
}

func (m *MockIntegrationService) RegisterWebhook(ctx context.Context, req integrationapp.RegisterWebhookRequest) (*integrationapp.WebhookResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*integrationapp.WebhookResponse)
	return r, args.Error(1)
}
