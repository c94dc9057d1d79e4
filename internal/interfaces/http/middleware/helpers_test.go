package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

type userMap map[uuid.UUID]*identity.User

func (m userMap) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("user_"+string(role), string(role)+"@example.com", "password123", role, 4)
	require.NoError(t, err)
	return u
}

func issueToken(t *testing.T, svc *auth.JWTService, u *identity.User) *auth.TokenPair {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.Subject{UserID: u.ID, Username: u.Username, Role: u.Role.String()})
	require.NoError(t, err)
	return pair
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}
