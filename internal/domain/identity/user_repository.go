package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create inserts a new user. A duplicate username or email yields shared.ErrAlreadyExists.
	Create(ctx context.Context, user *User) error

	// Update persists changes to an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email is taken
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
