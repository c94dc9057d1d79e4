package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroom/backend/internal/domain/identity"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error, "User")
}

func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"role":          user.Role,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"last_login_at": user.LastLoginAt,
			"version":       user.Version,
			"updated_at":    user.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error, "User")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "User")
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return &user, nil
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

// ExistsByEmail compares case-insensitively; emails are stored lower-cased
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *GormUserRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, translateError(err, "User")
	}
	return count > 0, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
