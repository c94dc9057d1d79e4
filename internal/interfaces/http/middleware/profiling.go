package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

// Profiling tags the CPU samples of each request with its method and route
// pattern so profiles can be split per endpoint. Health probes are skipped.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || strings.HasPrefix(route, "/health") {
			c.Next()
			return
		}
		telemetry.WithRouteLabels(c.Request.Context(), c.Request.Method, route, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
