package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client supplied request key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// IdempotencyStore holds request key claims
type IdempotencyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a repeated request carrying the same Idempotency-Key
// with 409 while the first claim is held. Requests without the header pass
// through. A claim is released when the request fails so the client can retry.
// Store errors fail open.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > maxIdempotencyKeyLength {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		key := idempotencyScope(c) + ":" + raw
		ctx := c.Request.Context()
		claimed, err := cfg.Store.Claim(ctx, key, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			log.Info("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("idempotency_key", raw))
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already received")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("idempotency_key", raw), zap.Error(err))
			}
		}
	}
}

// idempotencyScope keeps keys of different callers and endpoints apart
func idempotencyScope(c *gin.Context) string {
	caller := "anonymous"
	if user := GetCurrentUser(c); user != nil {
		caller = user.ID.String()
	}
	return caller + ":" + c.Request.Method + ":" + c.Request.URL.Path
}
