package domain

import (
	"testing"
	"time"
)

func validConfig() *MonitorConfig {
	return &MonitorConfig{
		ID:            "cfg-1",
		Provider:      ProviderTypeGmail,
		BucketID:      "bkt-1",
		PollInterval:  5 * time.Minute,
		SuccessAction: ActionMarkRead,
		FailureAction: ActionNone,
		Enabled:       true,
	}
}

func TestMonitorConfig_Validate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := validConfig()
	bad.Provider = "imap"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}

	bad = validConfig()
	bad.SuccessAction = ActionMove
	if err := bad.Validate(); err == nil {
		t.Error("expected error for move action without folder")
	}
	bad.SuccessFolder = "Processed"
	if err := bad.Validate(); err != nil {
		t.Errorf("unexpected error with folder set: %v", err)
	}

	bad = validConfig()
	bad.PollInterval = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero poll interval")
	}
}

func TestMonitorConfig_Runnable(t *testing.T) {
	cfg := validConfig()
	if !cfg.Runnable() {
		t.Error("expected runnable")
	}

	cfg.Enabled = false
	if cfg.Runnable() {
		t.Error("disabled config must not be runnable")
	}

	cfg.Enabled = true
	cfg.BucketID = ""
	if cfg.Runnable() {
		t.Error("config without bucket must not be runnable")
	}
}

func TestMonitorConfig_CursorBound(t *testing.T) {
	cfg := validConfig()

	// Never polled: no bound
	if _, ok := cfg.CursorBound(); ok {
		t.Error("expected no bound when LastCheck is nil")
	}

	last := time.Now().Add(-time.Hour)
	cfg.LastCheck = &last
	bound, ok := cfg.CursorBound()
	if !ok || !bound.Equal(last) {
		t.Errorf("got (%v, %v), want (%v, true)", bound, ok, last)
	}

	// CheckAllMessages overrides the cursor
	cfg.CheckAllMessages = true
	if _, ok := cfg.CursorBound(); ok {
		t.Error("expected no bound when CheckAllMessages is set")
	}
}

func TestMonitorConfig_AdvanceCursor(t *testing.T) {
	cfg := validConfig()
	now := time.Now()
	cfg.AdvanceCursor(now)

	if cfg.LastCheck == nil || !cfg.LastCheck.Equal(now) {
		t.Errorf("cursor not advanced: %v", cfg.LastCheck)
	}
}

func TestMonitorConfig_IsDue(t *testing.T) {
	cfg := validConfig()
	now := time.Now()

	// Never polled configs are due immediately
	if !cfg.IsDue(now) {
		t.Error("expected due when never polled")
	}

	recent := now.Add(-time.Minute)
	cfg.LastCheck = &recent
	if cfg.IsDue(now) {
		t.Error("not due inside the poll interval")
	}

	stale := now.Add(-10 * time.Minute)
	cfg.LastCheck = &stale
	if !cfg.IsDue(now) {
		t.Error("expected due after the interval elapsed")
	}

	cfg.Enabled = false
	if cfg.IsDue(now) {
		t.Error("disabled config is never due")
	}
}

func TestMonitorConfig_ActionForOutcome(t *testing.T) {
	cfg := validConfig()
	cfg.FailureAction = ActionMove
	cfg.FailureFolder = "Failed"

	action, folder := cfg.ActionForOutcome(true)
	if action != ActionMarkRead || folder != "" {
		t.Errorf("got (%s, %q)", action, folder)
	}

	action, folder = cfg.ActionForOutcome(false)
	if action != ActionMove || folder != "Failed" {
		t.Errorf("got (%s, %q)", action, folder)
	}
}
