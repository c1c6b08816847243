package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Scheduler periodically scans enabled monitor configs and enqueues a
// poll task for every config whose interval has elapsed. It runs on
// worker nodes.
//
// For multi-worker deployments, configure a DistributedLock to prevent
// duplicate task enqueuing across instances. The per-config run lock in
// the orchestrator makes duplicates harmless but wasteful.
type Scheduler struct {
	monitorStore driven.MonitorStore
	taskQueue    driven.TaskQueue
	lock         driven.DistributedLock
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	interval     time.Duration
	lockTTL      time.Duration
	lockRequired bool
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	MonitorStore driven.MonitorStore
	TaskQueue    driven.TaskQueue
	Lock         driven.DistributedLock // Optional: coordination across scheduler instances
	Logger       *slog.Logger
	ScanInterval time.Duration // How often to check for due configs (default: 30s)
	LockTTL      time.Duration // TTL for the distributed lock (default: 60s)
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.ScanInterval
	if interval == 0 {
		interval = 30 * time.Second
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 60 * time.Second
	}

	return &Scheduler{
		monitorStore: cfg.MonitorStore,
		taskQueue:    cfg.TaskQueue,
		lock:         cfg.Lock,
		logger:       logger,
		interval:     interval,
		lockTTL:      lockTTL,
		lockRequired: cfg.Lock != nil,
	}
}

// Start begins the scheduler loop. It runs until Stop is called or the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("scheduler starting", "scan_interval", s.interval)

	go s.run(ctx)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Scan immediately on start
	s.scanAndEnqueue(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.scanAndEnqueue(ctx)
		}
	}
}

// scanAndEnqueue enqueues a poll task for every due config.
func (s *Scheduler) scanAndEnqueue(ctx context.Context) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, "scheduler", s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire scheduler lock", "error", err)
			if s.lockRequired {
				return
			}
		} else if !acquired {
			s.logger.Debug("scheduler lock held by another instance, skipping cycle")
			return
		} else {
			defer func() {
				if err := s.lock.Release(ctx, "scheduler"); err != nil {
					s.logger.Warn("failed to release scheduler lock", "error", err)
				}
			}()
		}
	}

	configs, err := s.monitorStore.ListEnabled(ctx)
	if err != nil {
		s.logger.Error("failed to list enabled configs", "error", err)
		return
	}

	now := time.Now()
	for _, cfg := range configs {
		if !cfg.Runnable() || !cfg.IsDue(now) {
			continue
		}

		task := domain.NewPollConfigTask(cfg.ID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			s.logger.Error("failed to enqueue poll task",
				"config_id", cfg.ID,
				"error", err,
			)
			continue
		}

		s.logger.Info("enqueued poll task",
			"config_id", cfg.ID,
			"task_id", task.ID,
			"provider", cfg.Provider,
		)
	}
}
