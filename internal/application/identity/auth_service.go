package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, errInvalidCredentials
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, errInvalidCredentials
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The login stands even if the timestamp could not be stored
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &AuthResult{TokenResult: toTokenResult(pair), User: ToUserInfo(user)}, nil
}

// Register creates a user and logs them in. Roles other than the default are
// only honoured when the caller is an admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if role != identity.DefaultRole && input.CallerRole != identity.RoleAdmin {
		s.logger.Warn("Ignoring requested role for non-admin registration",
			zap.String("username", input.Username),
			zap.String("requested_role", role.String()))
		role = identity.DefaultRole
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username already exists")
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already exists")
	}

	user, err := identity.NewUser(input.Username, input.Email, input.Password, role, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.SetProfile(input.FirstName, input.LastName)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()))

	return &AuthResult{TokenResult: toTokenResult(pair), User: ToUserInfo(user)}, nil
}

// RefreshToken exchanges a valid refresh token for a new pair. The role is
// re-read from the user so that changes take effect without a new login.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	// A refresh token is single use; the first caller to consume it wins
	consumed, err := s.blacklist.Consume(ctx, claims.ID, claims.GetRemainingTTL())
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, subjectOf(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))
	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes the presented access token and, when given, the refresh
// token. AllSessions revokes every token issued to the user so far.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.Claims == nil {
		return shared.NewDomainError("UNAUTHORIZED", "Authentication required")
	}

	if err := s.blacklist.Revoke(ctx, input.Claims.ID, input.Claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke access token", zap.Error(err))
		return err
	}

	if input.RefreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && refresh.UserID == input.Claims.UserID {
			if err := s.blacklist.Revoke(ctx, refresh.ID, refresh.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to revoke refresh token", zap.Error(err))
				return err
			}
		}
	}

	if input.AllSessions {
		if err := s.blacklist.RevokeUser(ctx, input.Claims.UserID, s.jwtService.RefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke user sessions", zap.Error(err))
			return err
		}
	}

	s.logger.Info("User logout",
		zap.String("user_id", input.Claims.UserID),
		zap.Bool("all_sessions", input.AllSessions))
	return nil
}

// GetCurrentUser retrieves the authenticated user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, claims *auth.Claims) (*UserInfo, error) {
	if claims == nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Authentication required")
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

func (s *AuthService) issue(user *identity.User) (*auth.TokenPair, error) {
	pair, err := s.jwtService.GenerateTokenPair(subjectOf(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return pair, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func subjectOf(user *identity.User) auth.Subject {
	return auth.Subject{UserID: user.ID, Username: user.Username, Role: user.Role.String()}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
