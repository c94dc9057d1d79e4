package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// Authorize lets the request through only when the authenticated user holds
// one of roles. It must run after JWTAuth.
func Authorize(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !identity.Authorize(user.Role, roles...) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access forbidden")
			return
		}
		c.Next()
	}
}
