package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	integrationapp "github.com/stockroom/backend/internal/application/integration"
	"github.com/stockroom/backend/internal/domain/shared"
)

func integrationRouter(svc *MockIntegrationService) *gin.Engine {
	h := NewIntegrationHandler(testBase(), svc)
	r := newTestRouter()
	r.POST("/api/shipping/quote", h.Quote)
	r.POST("/api/integrations/webhooks", h.RegisterWebhook)
	return r
}

func TestIntegrationHandler_Quote(t *testing.T) {
	svc := new(MockIntegrationService)
	svc.On("Quote", mock.Anything, mock.MatchedBy(func(req integrationapp.ShippingQuoteRequest) bool {
		return req.Package.Weight.Equal(decimal.RequireFromString("1.5")) && req.Destination.ZipCode == "2000"
	})).Return(&integrationapp.ShippingQuoteResponse{Quotes: []integrationapp.QuoteResponse{
		{PlanName: "Standard", Amount: decimal.RequireFromString("13.95"), Currency: "AUD"},
	}}, nil)

	body := `{"package":{"weight":"1.5"},"destination":{"city":"Sydney","zip_code":"2000"}}`
	rec := doJSON(integrationRouter(svc), http.MethodPost, "/api/shipping/quote", body)

	require.Equal(t, http.StatusOK, rec.Code)
	quotes := decode(t, rec).Data.(map[string]any)["quotes"].([]any)
	assert.Len(t, quotes, 1)
}

func TestIntegrationHandler_Quote_CarrierDown(t *testing.T) {
	svc := new(MockIntegrationService)
	svc.On("Quote", mock.Anything, mock.Anything).
		Return(nil, shared.NewIntegrationError("Shipping quote request failed", errors.New("503")))

	rec := doJSON(integrationRouter(svc), http.MethodPost, "/api/shipping/quote", `{"package":{"weight":"1"}}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Shipping quote request failed", decode(t, rec).Error.Message)
}

func TestIntegrationHandler_RegisterWebhook(t *testing.T) {
	svc := new(MockIntegrationService)
	req := integrationapp.RegisterWebhookRequest{Topic: "orders/create", Address: "https://hooks.example.com/orders"}
	svc.On("RegisterWebhook", mock.Anything, req).
		Return(&integrationapp.WebhookResponse{ID: "42", Topic: req.Topic, Address: req.Address, CreatedAt: time.Now()}, nil)

	rec := doJSON(integrationRouter(svc), http.MethodPost, "/api/integrations/webhooks",
		`{"topic":"orders/create","address":"https://hooks.example.com/orders"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "42", decode(t, rec).Data.(map[string]any)["id"])

	rec = doJSON(integrationRouter(svc), http.MethodPost, "/api/integrations/webhooks", `{"topic":"orders/create","address":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
