package handler

import (
	"github.com/gin-gonic/gin"

	integrationapp "github.com/stockroom/backend/internal/application/integration"
)

// IntegrationHandler exposes carrier quotes and commerce webhook registration
type IntegrationHandler struct {
	BaseHandler
	integrations IntegrationService
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(base BaseHandler, integrations IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{BaseHandler: base, integrations: integrations}
}

// Quote asks the carrier for shipping offers
func (h *IntegrationHandler) Quote(c *gin.Context) {
	var req integrationapp.ShippingQuoteRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	quotes, err := h.integrations.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotes)
}

// RegisterWebhook subscribes an address to a commerce platform topic
func (h *IntegrationHandler) RegisterWebhook(c *gin.Context) {
	var req integrationapp.RegisterWebhookRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	hook, err := h.integrations.RegisterWebhook(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, hook)
}
