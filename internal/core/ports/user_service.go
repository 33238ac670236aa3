package ports

import (
	"context"

	"github.com/sirpyerre/library-tracker/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	UserID      string
	Username    string
	PhoneNumber string
}

// AuthResult is returned by Register and Authenticate. Token is empty when
// token issuing is disabled.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService defines the user directory use cases.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Authenticate(ctx context.Context, userID, phoneNumber string) (*AuthResult, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
