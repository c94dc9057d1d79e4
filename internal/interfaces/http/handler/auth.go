package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityapp "github.com/stockroom/backend/internal/application/identity"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(base BaseHandler, authService AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, authService: authService}
}

// Login authenticates with username and password
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginInput
	if !h.bindJSON(c, &req, false) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Register creates a user. Only an authenticated admin may choose a role
// other than the default.
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterInput
	if !h.bindJSON(c, &req, false) {
		return
	}
	if caller := middleware.GetCurrentUser(c); caller != nil {
		req.CallerRole = caller.Role
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMessageResponse("User registered successfully", result))
}

// RefreshToken exchanges a refresh token for a new pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req identityapp.RefreshTokenInput
	if !h.bindJSON(c, &req, false) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout revokes the presented access token. The body is optional.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req identityapp.LogoutInput
	if !h.bindJSON(c, &req, true) {
		return
	}
	req.Claims = middleware.GetJWTClaims(c)

	if err := h.authService.Logout(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageResponse("Logged out successfully", nil))
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	info, err := h.authService.GetCurrentUser(c.Request.Context(), middleware.GetJWTClaims(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
