package driven

import (
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// AuthAdapter handles password hashing and token operations
type AuthAdapter interface {
	// HashPassword hashes a plaintext password
	HashPassword(password string) (string, error)

	// VerifyPassword checks a plaintext password against a hash
	VerifyPassword(hashedPassword, password string) error

	// GenerateToken creates a signed token for a user
	GenerateToken(user *domain.User) (string, time.Time, error)

	// ValidateToken validates a token and returns its claims
	ValidateToken(token string) (*domain.TokenClaims, error)
}
