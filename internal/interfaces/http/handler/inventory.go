package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockroom/backend/internal/application/inventory"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// InventoryHandler serves stock levels per location
type InventoryHandler struct {
	BaseHandler
	inventory InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(base BaseHandler, inventory InventoryService) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, inventory: inventory}
}

// List returns a page of inventory items
func (h *InventoryHandler) List(c *gin.Context) {
	var filter inventoryapp.InventoryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.inventory.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get returns one inventory item
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	item, err := h.inventory.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create stocks a product at a location
func (h *InventoryHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateInventoryItemRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), req)
	respond(&h.BaseHandler, c, http.StatusCreated, item, err)
}

// Update changes location, reorder point or the commerce link
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req inventoryapp.UpdateInventoryItemRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	item, err := h.inventory.Update(c.Request.Context(), id, req)
	respond(&h.BaseHandler, c, http.StatusOK, item, err)
}

// Delete removes an inventory item
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.inventory.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageResponse("Inventory item deleted successfully", nil))
}

// Adjust applies a signed quantity change
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req inventoryapp.AdjustInventoryRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	item, err := h.inventory.Adjust(c.Request.Context(), id, req)
	respond(&h.BaseHandler, c, http.StatusOK, item, err)
}
