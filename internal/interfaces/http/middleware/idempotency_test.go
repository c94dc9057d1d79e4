package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/infrastructure/cache"
)

type failingStore struct{}

func (failingStore) Claim(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingStore) Release(context.Context, string) error { return nil }

func newIdempotentRouter(store IdempotencyStore, status *int, calls *int) *gin.Engine {
	router := gin.New()
	router.POST("/orders/:id/fulfill", Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour}), func(c *gin.Context) {
		*calls++
		c.Status(*status)
	})
	return router
}

func postWithKey(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency(t *testing.T) {
	t.Run("repeated key is rejected", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		status, calls := http.StatusOK, 0
		router := newIdempotentRouter(store, &status, &calls)

		assert.Equal(t, http.StatusOK, postWithKey(router, "/orders/1/fulfill", "abc").Code)
		rec := postWithKey(router, "/orders/1/fulfill", "abc")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "DUPLICATE_REQUEST", decodeError(t, rec).Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("keys are scoped to the path", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		status, calls := http.StatusOK, 0
		router := newIdempotentRouter(store, &status, &calls)

		assert.Equal(t, http.StatusOK, postWithKey(router, "/orders/1/fulfill", "abc").Code)
		assert.Equal(t, http.StatusOK, postWithKey(router, "/orders/2/fulfill", "abc").Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("keys are scoped to the caller", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		first := newTestUser(t, identity.RoleAdmin)
		second := newTestUser(t, identity.RoleManager)

		calls := 0
		router := gin.New()
		router.POST("/orders", func(c *gin.Context) {
			if c.GetHeader("X-Test-User") == "second" {
				c.Set(CurrentUserKey, second)
			} else {
				c.Set(CurrentUserKey, first)
			}
		}, Idempotency(IdempotencyConfig{Store: store}), func(c *gin.Context) {
			calls++
			c.Status(http.StatusCreated)
		})

		send := func(user string) int {
			req := httptest.NewRequest(http.MethodPost, "/orders", nil)
			req.Header.Set(IdempotencyKeyHeader, "same")
			req.Header.Set("X-Test-User", user)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusCreated, send("first"))
		assert.Equal(t, http.StatusCreated, send("second"))
		assert.Equal(t, http.StatusConflict, send("first"))
		assert.Equal(t, 2, calls)
	})

	t.Run("failed request releases the key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		status, calls := http.StatusBadGateway, 0
		router := newIdempotentRouter(store, &status, &calls)

		assert.Equal(t, http.StatusBadGateway, postWithKey(router, "/orders/1/fulfill", "abc").Code)
		status = http.StatusOK
		assert.Equal(t, http.StatusOK, postWithKey(router, "/orders/1/fulfill", "abc").Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("requests without a key pass through", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		status, calls := http.StatusOK, 0
		router := newIdempotentRouter(store, &status, &calls)

		postWithKey(router, "/orders/1/fulfill", "")
		postWithKey(router, "/orders/1/fulfill", "")
		assert.Equal(t, 2, calls)
	})

	t.Run("overlong key is rejected", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		status, calls := http.StatusOK, 0
		router := newIdempotentRouter(store, &status, &calls)

		rec := postWithKey(router, "/orders/1/fulfill", strings.Repeat("k", 256))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, calls)
	})

	t.Run("store errors fail open", func(t *testing.T) {
		status, calls := http.StatusOK, 0
		router := newIdempotentRouter(failingStore{}, &status, &calls)

		require.Equal(t, http.StatusOK, postWithKey(router, "/orders/1/fulfill", "abc").Code)
		require.Equal(t, http.StatusOK, postWithKey(router, "/orders/1/fulfill", "abc").Code)
		assert.Equal(t, 2, calls)
	})
}
