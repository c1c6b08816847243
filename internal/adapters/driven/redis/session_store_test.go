package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

func testSession(id, userID, token string) *domain.Session {
	return &domain.Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestSessionStore_SaveGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	store := NewSessionStore(client)

	session := testSession("s1", "u1", "tok-1")
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" || got.Token != "tok-1" {
		t.Errorf("wrong session: %+v", got)
	}

	byToken, err := store.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.ID != "s1" {
		t.Errorf("wrong session by token: %+v", byToken)
	}
}

func TestSessionStore_GetMissing(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewSessionStore(client)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_ExpiredNotSaved(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	store := NewSessionStore(client)

	session := testSession("s1", "u1", "tok-1")
	session.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be absent, got %v", err)
	}
}

func TestSessionStore_ExpiresWithTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	store := NewSessionStore(client)

	session := testSession("s1", "u1", "tok-1")
	session.ExpiresAt = time.Now().Add(time.Second)
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session expired, got %v", err)
	}
	if _, err := store.GetByToken(ctx, "tok-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected token index expired, got %v", err)
	}
}

func TestSessionStore_DeleteByToken(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	store := NewSessionStore(client)

	if err := store.Save(ctx, testSession("s1", "u1", "tok-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.DeleteByToken(ctx, "tok-1"); err != nil {
		t.Fatalf("delete by token: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestSessionStore_DeleteByUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	store := NewSessionStore(client)

	store.Save(ctx, testSession("s1", "u1", "tok-1"))
	store.Save(ctx, testSession("s2", "u1", "tok-2"))
	store.Save(ctx, testSession("s3", "u2", "tok-3"))

	if err := store.DeleteByUser(ctx, "u1"); err != nil {
		t.Fatalf("delete by user: %v", err)
	}

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("s1 should be gone: %v", err)
	}
	if _, err := store.Get(ctx, "s2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("s2 should be gone: %v", err)
	}
	// Other users' sessions survive.
	if _, err := store.Get(ctx, "s3"); err != nil {
		t.Errorf("s3 should survive: %v", err)
	}
}
