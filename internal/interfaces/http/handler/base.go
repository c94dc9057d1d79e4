package handler

import (
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger      *zap.Logger
	development bool
}

// NewBaseHandler creates the shared part of every handler. In development
// 500 responses carry the error text and a stack trace.
func NewBaseHandler(logger *zap.Logger, development bool) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger, development: development}
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 response listing the invalid fields
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(middleware.GetRequestID(c), details))
}

// HandleError converts err into the error envelope. Domain errors keep their
// code and message; anything else is logged and reported as a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	if domainErr, ok := shared.AsDomainError(err); ok {
		status := dto.GetHTTPStatus(domainErr.Code)
		resp := dto.NewErrorResponse(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
		if status >= http.StatusInternalServerError {
			h.logServerError(c, err)
			h.attachStack(resp.Error)
		}
		c.JSON(status, resp)
		return
	}

	h.logServerError(c, err)
	message := "Internal server error"
	if h.development {
		message = err.Error()
	}
	resp := dto.NewErrorResponse(dto.ErrCodeInternal, message, middleware.GetRequestID(c))
	h.attachStack(resp.Error)
	c.JSON(http.StatusInternalServerError, resp)
}

// respond answers with status and data, unless err is set. A result that
// comes with an INTEGRATION_FAILED error means the local change stands but
// an external sync failed: the error envelope then carries it in details.
func respond[T any](h *BaseHandler, c *gin.Context, status int, data *T, err error) {
	if err == nil {
		c.JSON(status, dto.NewSuccessResponse(data))
		return
	}
	domainErr, ok := shared.AsDomainError(err)
	if !ok || data == nil || !errors.Is(err, shared.ErrIntegrationFailed) {
		h.HandleError(c, err)
		return
	}

	_ = c.Error(err)
	h.requestLogger(c).Warn("Local change committed but external sync failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	resp := dto.NewErrorResponse(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
	resp.Error.Details = data
	c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
}

func (h *BaseHandler) requestLogger(c *gin.Context) *zap.Logger {
	if _, ok := c.Get(logger.GinLoggerKey); ok {
		return logger.GetGinLogger(c)
	}
	return h.logger.With(zap.String("request_id", middleware.GetRequestID(c)))
}

func (h *BaseHandler) logServerError(c *gin.Context, err error) {
	h.requestLogger(c).Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
}

func (h *BaseHandler) attachStack(info *dto.ErrorInfo) {
	if h.development {
		info.Stack = string(debug.Stack())
	}
}

// bindJSON decodes the request body into req, answering 400 on failure.
// An empty body is accepted when allowEmpty is set.
func (h *BaseHandler) bindJSON(c *gin.Context, req any, allowEmpty bool) bool {
	if allowEmpty && c.Request.ContentLength == 0 {
		return true
	}
	err := c.ShouldBindJSON(req)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size")
	case middleware.ValidationDetails(err) != nil:
		h.ValidationError(c, middleware.ValidationDetails(err))
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
	}
	return false
}

// bindQuery decodes query parameters into req, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		if details := middleware.ValidationDetails(err); details != nil {
			h.ValidationError(c, details)
			return false
		}
		h.BadRequest(c, "Invalid query parameters")
		return false
	}
	return true
}

// parseID reads the :id path parameter, answering 400 when it is not a UUID
func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
