package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityapp "github.com/stockroom/backend/internal/application/identity"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

func authRouter(svc *MockAuthService, caller *identity.User, claims *auth.Claims) *gin.Engine {
	h := NewAuthHandler(testBase(), svc)
	r := newTestRouter()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.CurrentUserKey, caller)
		}
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
	})
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/refresh-token", h.RefreshToken)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/auth/me", h.Me)
	return r
}

func authResult() *identityapp.AuthResult {
	return &identityapp.AuthResult{
		TokenResult: identityapp.TokenResult{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
			TokenType:    "Bearer",
		},
		User: identityapp.UserInfo{ID: uuid.New(), Username: "alice", Role: "warehouse_staff"},
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, identityapp.LoginInput{Username: "alice", Password: "password123"}).
		Return(authResult(), nil)

	rec := doJSON(authRouter(svc, nil, nil), http.MethodPost, "/api/auth/login", `{"username":"alice","password":"password123"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]any)
	assert.Equal(t, "access", data["access_token"])
	assert.Equal(t, "alice", data["user"].(map[string]any)["username"])
	svc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password"))

	rec := doJSON(authRouter(svc, nil, nil), http.MethodPost, "/api/auth/login", `{"username":"alice","password":"nope-nope"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Invalid username or password", resp.Error.Message)
	assert.Nil(t, resp.Data)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	svc := new(MockAuthService)

	rec := doJSON(authRouter(svc, nil, nil), http.MethodPost, "/api/auth/login", `{"username":"alice"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Error.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthHandler_Register(t *testing.T) {
	body := `{"username":"bob","email":"bob@example.com","password":"password123","role":"manager"}`

	t.Run("anonymous caller", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.MatchedBy(func(in identityapp.RegisterInput) bool {
			return in.Username == "bob" && in.Role == "manager" && in.CallerRole == ""
		})).Return(authResult(), nil)

		rec := doJSON(authRouter(svc, nil, nil), http.MethodPost, "/api/auth/register", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "User registered successfully", decode(t, rec).Message)
		svc.AssertExpectations(t)
	})

	t.Run("admin caller", func(t *testing.T) {
		admin := &identity.User{Username: "root", Role: identity.RoleAdmin}
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.MatchedBy(func(in identityapp.RegisterInput) bool {
			return in.CallerRole == identity.RoleAdmin
		})).Return(authResult(), nil)

		rec := doJSON(authRouter(svc, admin, nil), http.MethodPost, "/api/auth/register", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("ALREADY_EXISTS", "Username already exists"))

		rec := doJSON(authRouter(svc, nil, nil), http.MethodPost, "/api/auth/register", body)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Username already exists", decode(t, rec).Error.Message)
	})
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("RefreshToken", mock.Anything, identityapp.RefreshTokenInput{RefreshToken: "stale"}).
		Return(nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token"))

	rec := doJSON(authRouter(svc, nil, nil), http.MethodPost, "/api/auth/refresh-token", `{"refresh_token":"stale"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.NewString()}
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, identityapp.LogoutInput{Claims: claims}).Return(nil).Once()
	svc.On("Logout", mock.Anything, identityapp.LogoutInput{Claims: claims, AllSessions: true}).Return(nil).Once()

	r := authRouter(svc, nil, claims)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/auth/logout", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/auth/logout", `{"all_sessions":true}`).Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Me(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.NewString()}
	svc := new(MockAuthService)
	svc.On("GetCurrentUser", mock.Anything, claims).Return(&identityapp.UserInfo{Username: "alice"}, nil)

	rec := doJSON(authRouter(svc, nil, claims), http.MethodGet, "/api/auth/me", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec).Data.(map[string]any)["username"])
}
