package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

func testAdapter() *Adapter {
	return NewAdapterWithCost("test-secret", time.Hour, bcrypt.MinCost)
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "u1",
		Email: "ops@haul.test",
		Role:  domain.RoleOperator,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	a := testAdapter()

	hash, err := a.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("password stored in plaintext")
	}

	if err := a.VerifyPassword(hash, "correct horse battery"); err != nil {
		t.Errorf("verify: %v", err)
	}

	err = a.VerifyPassword(hash, "wrong password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	a := testAdapter()
	user := testUser()

	token, expiresAt, err := a.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if time.Until(expiresAt) > time.Hour || time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("unexpected expiry: %s", expiresAt)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "ops@haul.test" || claims.Role != domain.RoleOperator {
		t.Errorf("wrong claims: %+v", claims)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := testAdapter().GenerateToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewAdapter("different-secret", time.Hour)
	_, err = other.ValidateToken(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	a := NewAdapterWithCost("test-secret", time.Nanosecond, bcrypt.MinCost)

	token, _, err := a.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := a.ValidateToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := testAdapter().ValidateToken("not.a.jwt"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
