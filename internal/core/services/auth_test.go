package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven/mocks"
)

// fakeAuthAdapter is a plaintext stand-in for the bcrypt/JWT adapter
type fakeAuthAdapter struct{}

func (fakeAuthAdapter) HashPassword(password string) (string, error) {
	return "hash:" + password, nil
}

func (fakeAuthAdapter) VerifyPassword(hashedPassword, password string) error {
	if hashedPassword != "hash:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (fakeAuthAdapter) GenerateToken(user *domain.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Now().Add(time.Hour), nil
}

func (fakeAuthAdapter) ValidateToken(token string) (*domain.TokenClaims, error) {
	if len(token) < 6 || token[:6] != "token-" {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{
		UserID:    token[6:],
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil
}

func setupAuth(t *testing.T) (*AuthService, *mocks.MockUserStore, *mocks.MockSessionStore) {
	t.Helper()
	users := mocks.NewMockUserStore()
	sessions := mocks.NewMockSessionStore()
	return NewAuthService(users, sessions, fakeAuthAdapter{}, nil), users, sessions
}

func TestAuth_LoginAndValidate(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "ops@example.com", "Ops", "secret", domain.RoleOperator)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "ops@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.ID != user.ID {
		t.Errorf("wrong response: %+v", resp)
	}

	authCtx, err := svc.Validate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if authCtx.UserID != user.ID {
		t.Errorf("wrong auth context: %+v", authCtx)
	}
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "ops@example.com", "Ops", "secret", domain.RoleOperator); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "ops@example.com", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Unknown user yields the same error as a wrong password.
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuth_LoginInactiveUser(t *testing.T) {
	svc, users, _ := setupAuth(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "ops@example.com", "Ops", "secret", domain.RoleOperator)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	user.Active = false
	users.Save(ctx, user)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ops@example.com", Password: "secret"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuth_Logout(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "ops@example.com", "Ops", "secret", domain.RoleOperator); err != nil {
		t.Fatalf("create user: %v", err)
	}
	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "ops@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.Validate(ctx, resp.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestAuth_CreateUserDuplicate(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "ops@example.com", "Ops", "secret", domain.RoleOperator); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := svc.CreateUser(ctx, "ops@example.com", "Other", "pw", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuth_DeleteUserRemovesSessions(t *testing.T) {
	svc, _, sessions := setupAuth(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "ops@example.com", "Ops", "secret", domain.RoleOperator)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "ops@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := sessions.GetByToken(ctx, resp.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
}
