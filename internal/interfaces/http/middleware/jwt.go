package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	CurrentUserKey = "current_user"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// UserFinder resolves the subject of a token to a stored user
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// JWTAuthConfig holds the collaborators of the JWT middleware
type JWTAuthConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional. Lookup failures fail open.
	Blacklist auth.TokenBlacklist
	Users     UserFinder
	Logger    *zap.Logger
}

type authFailure struct {
	code    string
	message string
}

var (
	failMissing  = authFailure{dto.ErrCodeUnauthorized, "Authentication required"}
	failFormat   = authFailure{dto.ErrCodeTokenInvalid, "Invalid authorization header format"}
	failInvalid  = authFailure{dto.ErrCodeTokenInvalid, "Invalid token"}
	failExpired  = authFailure{dto.ErrCodeTokenExpired, "Token has expired"}
	failRevoked  = authFailure{dto.ErrCodeTokenRevoked, "Token has been revoked"}
	failNoUser   = authFailure{dto.ErrCodeUnauthorized, "User not found"}
	failInternal = authFailure{dto.ErrCodeUnauthorized, "Authentication required"}
)

// JWTAuth requires a valid, unrevoked bearer token whose user still exists.
// The claims and the user are stored in the gin context.
func JWTAuth(cfg JWTAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims, user, failure := authenticate(c, cfg, log)
		if failure != nil {
			log.Warn("JWT authentication failed",
				zap.String("code", failure.code),
				zap.String("message", failure.message),
				zap.String("path", c.Request.URL.Path))
			abortWithError(c, http.StatusUnauthorized, failure.code, failure.message)
			return
		}
		setIdentity(c, claims, user)
		c.Next()
	}
}

// OptionalJWTAuth stores the identity when a valid token is presented and
// otherwise lets the request through anonymously
func OptionalJWTAuth(cfg JWTAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.GetHeader(AuthHeaderKey) == "" {
			c.Next()
			return
		}
		if claims, user, failure := authenticate(c, cfg, log); failure == nil {
			setIdentity(c, claims, user)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg JWTAuthConfig, log *zap.Logger) (*auth.Claims, *identity.User, *authFailure) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return nil, nil, &failMissing
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, nil, &failFormat
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if tokenString == "" {
		return nil, nil, &failMissing
	}

	claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, nil, &failExpired
		}
		return nil, nil, &failInvalid
	}

	ctx := c.Request.Context()
	if cfg.Blacklist != nil {
		revoked, err := cfg.Blacklist.IsRevoked(ctx, claims.ID)
		if err == nil && !revoked {
			revoked, err = cfg.Blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		}
		if err != nil {
			log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			return nil, nil, &failRevoked
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, nil, &failInvalid
	}
	if cfg.Users == nil {
		return nil, nil, &failNoUser
	}
	user, err := cfg.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, &failNoUser
		}
		log.Error("Failed to load token subject", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, nil, &failInternal
	}
	return claims, user, nil
}

func setIdentity(c *gin.Context, claims *auth.Claims, user *identity.User) {
	c.Set(JWTClaimsKey, claims)
	c.Set(CurrentUserKey, user)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID.String()))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetCurrentUser retrieves the authenticated user from gin.Context
func GetCurrentUser(c *gin.Context) *identity.User {
	if u, exists := c.Get(CurrentUserKey); exists {
		if user, ok := u.(*identity.User); ok {
			return user
		}
	}
	return nil
}
