package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderapp "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/shared"
)

func orderRouter(orders *MockOrderService, fulfillment *MockFulfillmentService) *gin.Engine {
	h := NewOrderHandler(testBase(), orders, fulfillment)
	r := newTestRouter()
	r.GET("/api/orders", h.List)
	r.POST("/api/orders/import", h.Import)
	r.GET("/api/orders/:id", h.Get)
	r.POST("/api/orders", h.Create)
	r.PATCH("/api/orders/:id", h.UpdateStatus)
	r.POST("/api/orders/:id/fulfill", h.Fulfill)
	r.GET("/api/orders/:id/tracking", h.Tracking)
	return r
}

func TestOrderHandler_List_InvalidStatus(t *testing.T) {
	orders := new(MockOrderService)
	orders.On("List", mock.Anything, orderapp.OrderListFilter{Status: "lost"}).
		Return(shared.Paginated[orderapp.OrderResponse]{}, shared.NewDomainError("INVALID_STATUS", "Unknown order status: lost"))

	rec := doJSON(orderRouter(orders, nil), http.MethodGet, "/api/orders?status=lost", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATUS", decode(t, rec).Error.Code)
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	orders := new(MockOrderService)
	id := uuid.New()
	orders.On("GetByID", mock.Anything, id).Return(nil, shared.NewDomainError("NOT_FOUND", "Order not found"))

	rec := doJSON(orderRouter(orders, nil), http.MethodGet, "/api/orders/"+id.String(), "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decode(t, rec).Error.Message)
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Create", mock.Anything, mock.MatchedBy(func(req orderapp.CreateOrderRequest) bool {
			return req.Customer.Name == "Ada" && len(req.Items) == 1 && req.Items[0].SKU == "SKU-1"
		})).Return(&orderapp.OrderResponse{ID: uuid.New(), OrderNumber: "ORD-1", Status: "pending"}, nil)

		body := `{"customer":{"name":"Ada"},"items":[{"sku":"SKU-1","quantity":2}]}`
		rec := doJSON(orderRouter(orders, nil), http.MethodPost, "/api/orders", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "pending", decode(t, rec).Data.(map[string]any)["status"])
	})

	t.Run("no items", func(t *testing.T) {
		orders := new(MockOrderService)
		orders.On("Create", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_ORDER", "Invalid order data"))

		rec := doJSON(orderRouter(orders, nil), http.MethodPost, "/api/orders", `{"customer":{"name":"Ada"},"items":[]}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid order data", decode(t, rec).Error.Message)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	orders := new(MockOrderService)
	id := uuid.New()
	orders.On("UpdateStatus", mock.Anything, id, orderapp.UpdateOrderStatusRequest{Status: "processing"}).
		Return(&orderapp.OrderResponse{ID: id, Status: "processing"}, nil)

	rec := doJSON(orderRouter(orders, nil), http.MethodPatch, "/api/orders/"+id.String(), `{"status":"processing"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	orders.AssertExpectations(t)
}

func TestOrderHandler_Fulfill(t *testing.T) {
	id := uuid.New()
	fulfilled := &orderapp.OrderResponse{ID: id, Status: "fulfilled", TrackingNumber: "SNDL1", ShippingLabelURL: "https://labels/1.pdf"}

	tests := []struct {
		name   string
		result *orderapp.OrderResponse
		err    error
		status int
		code   string
	}{
		{"fulfilled", fulfilled, nil, http.StatusOK, ""},
		{"insufficient stock", nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient inventory for item: SKU-1"), http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"wrong state", nil, shared.NewDomainError("INVALID_STATE", "Cannot fulfill order in shipped status"), http.StatusBadRequest, "INVALID_STATE"},
		{"lost race", nil, shared.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENCY_CONFLICT"},
		{"label failed", nil, shared.NewIntegrationError("Shipping label request failed", errors.New("carrier down")), http.StatusBadGateway, "INTEGRATION_FAILED"},
		{"commerce sync failed", fulfilled, shared.NewIntegrationError("Commerce platform order sync failed", errors.New("timeout")), http.StatusBadGateway, "INTEGRATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fulfillment := new(MockFulfillmentService)
			fulfillment.On("Fulfill", mock.Anything, id).Return(tt.result, tt.err)

			rec := doJSON(orderRouter(nil, fulfillment), http.MethodPost, "/api/orders/"+id.String()+"/fulfill", "")

			require.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			if tt.code == "" {
				assert.Equal(t, "SNDL1", resp.Data.(map[string]any)["tracking_number"])
				return
			}
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.result != nil {
				assert.Equal(t, "SNDL1", resp.Error.Details.(map[string]any)["tracking_number"])
			}
		})
	}
}

func TestOrderHandler_Tracking(t *testing.T) {
	orders := new(MockOrderService)
	id := uuid.New()
	orders.On("Track", mock.Anything, id).Return(&orderapp.TrackingResponse{OrderID: id, TrackingNumber: "SNDL1", State: "In Transit"}, nil)

	rec := doJSON(orderRouter(orders, nil), http.MethodGet, "/api/orders/"+id.String()+"/tracking", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "In Transit", decode(t, rec).Data.(map[string]any)["state"])
}

func TestOrderHandler_Import(t *testing.T) {
	orders := new(MockOrderService)
	orders.On("Import", mock.Anything, orderapp.ImportOrdersRequest{}).Return(&orderapp.ImportResult{Imported: 2, Skipped: 1}, nil)

	rec := doJSON(orderRouter(orders, nil), http.MethodPost, "/api/orders/import", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, float64(2), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
}
