package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// OrderHandler serves orders and their fulfillment
type OrderHandler struct {
	BaseHandler
	orders      OrderService
	fulfillment FulfillmentService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(base BaseHandler, orders OrderService, fulfillment FulfillmentService) *OrderHandler {
	return &OrderHandler{BaseHandler: base, orders: orders, fulfillment: fulfillment}
}

// List returns a page of orders, optionally filtered by status
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get returns one order
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	o, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Create places a pending order
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	o, err := h.orders.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, http.StatusCreated, o, err)
}

// UpdateStatus applies a manual status transition
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req orderapp.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	respond(&h.BaseHandler, c, http.StatusOK, o, err)
}

// Fulfill deducts stock, buys a shipping label and marks the order fulfilled
func (h *OrderHandler) Fulfill(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	o, err := h.fulfillment.Fulfill(c.Request.Context(), id)
	respond(&h.BaseHandler, c, http.StatusOK, o, err)
}

// Tracking returns the carrier's scan history for the order
func (h *OrderHandler) Tracking(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	tracking, err := h.orders.Track(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tracking)
}

// Import pulls new orders from the commerce platform
func (h *OrderHandler) Import(c *gin.Context) {
	var req orderapp.ImportOrdersRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	result, err := h.orders.Import(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
