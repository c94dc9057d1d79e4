package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// Pinger checks a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db      Pinger
	service string
	timeout time.Duration
	started time.Time
}

// NewHealthHandler creates a health handler probing db
func NewHealthHandler(base BaseHandler, db Pinger, service string) *HealthHandler {
	return &HealthHandler{BaseHandler: base, db: db, service: service, timeout: 2 * time.Second, started: time.Now()}
}

// Health reports ok when the database answers a ping
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    gin.H{"status": "unhealthy", "database": "unreachable"},
			Error:   &dto.ErrorInfo{Code: "SERVICE_UNAVAILABLE", Message: "Database unreachable", RequestID: middleware.GetRequestID(c)},
		})
		return
	}
	h.Success(c, gin.H{
		"status":   "healthy",
		"service":  h.service,
		"database": "ok",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready reports the process is accepting traffic
func (h *HealthHandler) Ready(c *gin.Context) {
	h.Success(c, gin.H{"status": "ready"})
}
