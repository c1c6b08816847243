package driving

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// AuthService handles authentication and user management
type AuthService interface {
	// Login authenticates a user and creates a session
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// Logout invalidates a session by token
	Logout(ctx context.Context, token string) error

	// Validate resolves a token to its auth context
	Validate(ctx context.Context, token string) (*domain.AuthContext, error)

	// CreateUser creates a user with a hashed password
	CreateUser(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error)

	// ListUsers retrieves all users
	ListUsers(ctx context.Context) ([]*domain.UserSummary, error)

	// DeleteUser deletes a user and their sessions
	DeleteUser(ctx context.Context, id string) error
}
