package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/core/ports/driving"
)

// Ensure MonitorService implements the driving interface
var _ driving.MonitorService = (*MonitorService)(nil)

// MonitorService manages mailbox monitor configs.
type MonitorService struct {
	monitorStore driven.MonitorStore
	bucketStore  driven.BucketStore
	factory      driven.ConnectorFactory
	logger       *slog.Logger
}

// NewMonitorService creates a new MonitorService
func NewMonitorService(monitorStore driven.MonitorStore, bucketStore driven.BucketStore, factory driven.ConnectorFactory, logger *slog.Logger) *MonitorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorService{
		monitorStore: monitorStore,
		bucketStore:  bucketStore,
		factory:      factory,
		logger:       logger,
	}
}

// CreateConfig creates a monitor config
func (s *MonitorService) CreateConfig(ctx context.Context, cfg *domain.MonitorConfig) error {
	if err := s.validate(ctx, cfg); err != nil {
		return err
	}

	if cfg.ID == "" {
		cfg.ID = domain.GenerateID()
	}
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	cfg.LastCheck = nil

	if err := s.monitorStore.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Info("monitor config created", "config_id", cfg.ID, "provider", cfg.Provider)
	return nil
}

// GetConfig retrieves a config by ID
func (s *MonitorService) GetConfig(ctx context.Context, id string) (*domain.MonitorConfig, error) {
	return s.monitorStore.Get(ctx, id)
}

// ListConfigs retrieves all configs
func (s *MonitorService) ListConfigs(ctx context.Context) ([]*domain.MonitorConfig, error) {
	return s.monitorStore.List(ctx)
}

// UpdateConfig updates a config. The cursor is preserved from the stored
// row; the administrative surface never moves it.
func (s *MonitorService) UpdateConfig(ctx context.Context, cfg *domain.MonitorConfig) error {
	existing, err := s.monitorStore.Get(ctx, cfg.ID)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	if err := s.validate(ctx, cfg); err != nil {
		return err
	}

	cfg.LastCheck = existing.LastCheck
	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now()

	if err := s.monitorStore.Save(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	s.logger.Info("monitor config updated", "config_id", cfg.ID)
	return nil
}

// DeleteConfig deletes a config
func (s *MonitorService) DeleteConfig(ctx context.Context, id string) error {
	if err := s.monitorStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("monitor config deleted", "config_id", id)
	return nil
}

func (s *MonitorService) validate(ctx context.Context, cfg *domain.MonitorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if _, err := s.factory.Create(cfg.Provider); err != nil {
		return fmt.Errorf("%w: provider %q has no connector", domain.ErrInvalidInput, cfg.Provider)
	}

	if cfg.BucketID != "" {
		if _, err := s.bucketStore.Get(ctx, cfg.BucketID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: unknown bucket %q", domain.ErrInvalidInput, cfg.BucketID)
			}
			return fmt.Errorf("failed to get bucket: %w", err)
		}
	}
	return nil
}
