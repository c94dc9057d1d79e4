package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stockroom/backend/internal/domain/identity"
)

func TestAuthorize(t *testing.T) {
	svc := newTestJWTService()
	users := userMap{}
	tokens := map[identity.Role]string{}
	for _, role := range identity.AllRoles {
		u := newTestUser(t, role)
		users[u.ID] = u
		tokens[role] = issueToken(t, svc, u).AccessToken
	}

	router := gin.New()
	authn := JWTAuth(JWTAuthConfig{JWTService: svc, Users: users})
	router.POST("/adjust", authn, Authorize(identity.RoleAdmin, identity.RoleWarehouseStaff), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/unguarded-authz", Authorize(identity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		role identity.Role
		want int
	}{
		{identity.RoleAdmin, http.StatusOK},
		{identity.RoleWarehouseStaff, http.StatusOK},
		{identity.RoleManager, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/adjust", nil)
			req.Header.Set("Authorization", "Bearer "+tokens[tt.role])
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				info := decodeError(t, rec)
				assert.Equal(t, "FORBIDDEN", info.Code)
				assert.Equal(t, "Access forbidden", info.Message)
			}
		})
	}

	t.Run("without authentication", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unguarded-authz", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
