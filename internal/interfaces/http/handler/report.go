package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/stockroom/backend/internal/application/report"
)

// ReportHandler serves the sales, inventory and fulfillment reports
type ReportHandler struct {
	BaseHandler
	reports ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(base BaseHandler, reports ReportService) *ReportHandler {
	return &ReportHandler{BaseHandler: base, reports: reports}
}

// Generate builds the report named by ?type= for ?startDate= and ?endDate=
func (h *ReportHandler) Generate(c *gin.Context) {
	var q reportapp.ReportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.reports.Generate(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Sales builds the sales report
func (h *ReportHandler) Sales(c *gin.Context) {
	result, err := h.reports.Sales(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Inventory builds the inventory valuation report
func (h *ReportHandler) Inventory(c *gin.Context) {
	result, err := h.reports.Inventory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Fulfillment builds the fulfillment performance report
func (h *ReportHandler) Fulfillment(c *gin.Context) {
	result, err := h.reports.Fulfillment(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
