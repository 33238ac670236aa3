package ports

import (
	"context"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// FindByID returns domain.ErrUserNotFound when no user has the id.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no user has the username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create appends the user. Implementations that enforce uniqueness
	// return domain.ErrDuplicateID or domain.ErrDuplicateUsername.
	Create(ctx context.Context, user *domain.User) error
}
