package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the product catalog
type ProductHandler struct {
	BaseHandler
	products ProductService
	importer ProductImporter
}

// maxImportFileSize caps a product CSV upload at 10MB
const maxImportFileSize = 10 << 20

var importContentTypes = map[string]bool{
	"":                         true,
	"text/csv":                 true,
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.ms-excel": true,
}

// NewProductHandler creates a new product handler
func NewProductHandler(base BaseHandler, products ProductService, importer ProductImporter) *ProductHandler {
	return &ProductHandler{BaseHandler: base, products: products, importer: importer}
}

// List returns a page of products filtered by category and search
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Get returns one product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create adds a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update changes the fields present in the body
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Import loads products from a CSV sent as the multipart field "file" or as
// the raw request body
func (h *ProductHandler) Import(c *gin.Context) {
	var req catalogapp.ImportProductsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			h.BadRequest(c, "file is required")
			return
		}
		defer file.Close()

		if header.Size > maxImportFileSize {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "file exceeds maximum size of 10MB")
			return
		}
		if !importContentTypes[header.Header.Get("Content-Type")] {
			h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
			return
		}
		body = file
	} else {
		body = io.LimitReader(c.Request.Body, maxImportFileSize)
	}

	result, err := h.importer.Import(c.Request.Context(), body, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
