package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/core/ports/driving"
)

// Ensure AuthService implements the driving interface
var _ driving.AuthService = (*AuthService)(nil)

// AuthService handles operator authentication and user management.
type AuthService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
	logger       *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userStore driven.UserStore, sessionStore driven.SessionStore, authAdapter driven.AuthAdapter, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
		logger:       logger,
	}
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		// Indistinguishable from a wrong password on purpose.
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUnauthorized
	}

	if err := s.authAdapter.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.authAdapter.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &domain.Session{
		ID:        domain.GenerateID(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.sessionStore.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.userStore.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToSummary(),
	}, nil
}

// Logout invalidates a session by token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenInvalid
	}
	return s.sessionStore.DeleteByToken(ctx, token)
}

// Validate resolves a token to its auth context. The token signature,
// its expiry, and the backing session must all check out.
func (s *AuthService) Validate(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ValidateToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	session, err := s.sessionStore.GetByToken(ctx, token)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: session.ID,
	}, nil
}

// CreateUser creates a user with a hashed password
func (s *AuthService) CreateUser(ctx context.Context, email, name, password string, role domain.Role) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	if role != domain.RoleAdmin && role != domain.RoleOperator {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	if _, err := s.userStore.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrAlreadyExists
	}

	hash, err := s.authAdapter.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           domain.GenerateID(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "role", role)
	return user, nil
}

// ListUsers retrieves all users
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.UserSummary, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]*domain.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.ToSummary())
	}
	return summaries, nil
}

// DeleteUser deletes a user and their sessions
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userStore.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.sessionStore.DeleteByUser(ctx, id); err != nil {
		s.logger.Warn("failed to delete user sessions", "user_id", id, "error", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
