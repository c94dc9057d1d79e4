package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/infrastructure/auth"
)

// LoginInput contains the credentials of a login attempt
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterInput contains the fields of a registration.
// CallerRole is the role of the authenticated caller, empty for anonymous requests.
type RegisterInput struct {
	Username   string        `json:"username" binding:"required,min=3,max=50"`
	Email      string        `json:"email" binding:"required,email"`
	Password   string        `json:"password" binding:"required,min=8"`
	Role       string        `json:"role"`
	FirstName  string        `json:"first_name" binding:"max=100"`
	LastName   string        `json:"last_name" binding:"max=100"`
	CallerRole identity.Role `json:"-"`
}

// RefreshTokenInput contains the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the tokens to revoke. Claims are those of the
// presented access token; RefreshToken is optional.
type LogoutInput struct {
	Claims       *auth.Claims `json:"-"`
	RefreshToken string       `json:"refresh_token"`
	AllSessions  bool         `json:"all_sessions"`
}

// UserInfo represents a user in API responses
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	FullName    string     `json:"full_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TokenResult is an issued token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthResult is returned by login and registration
type AuthResult struct {
	TokenResult
	User UserInfo `json:"user"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role.String(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		LastLoginAt: u.LastLoginAt,
	}
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		ExpiresAt:             pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}
