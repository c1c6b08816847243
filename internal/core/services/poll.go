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

// Ensure PollOrchestrator implements the driving interface
var _ driving.PollService = (*PollOrchestrator)(nil)

// pollLockTTL bounds how long a crashed worker can block a config.
const pollLockTTL = 10 * time.Minute

// PollOrchestrator coordinates one ingestion run against a mailbox:
//  1. Load the monitor config and its destination bucket
//  2. Acquire the per-config run lock
//  3. Authenticate and list candidate messages
//  4. For each message: fetch PDFs, detect barcodes, classify, file or
//     quarantine, then apply the configured post-process action
//  5. Advance the cursor and write the run log
//
// Failures are isolated per message and per attachment; one bad email
// never aborts the run.
type PollOrchestrator struct {
	monitorStore     driven.MonitorStore
	bucketStore      driven.BucketStore
	runLogStore      driven.RunLogStore
	connectorFactory driven.ConnectorFactory
	detector         driven.BarcodeDetector
	classifier       *Classifier
	filer            *Filer
	lock             driven.DistributedLock
	taskQueue        driven.TaskQueue
	logger           *slog.Logger
}

// PollOrchestratorConfig holds dependencies for PollOrchestrator.
type PollOrchestratorConfig struct {
	MonitorStore     driven.MonitorStore
	BucketStore      driven.BucketStore
	RunLogStore      driven.RunLogStore
	ConnectorFactory driven.ConnectorFactory
	Detector         driven.BarcodeDetector
	Classifier       *Classifier
	Filer            *Filer
	Lock             driven.DistributedLock
	TaskQueue        driven.TaskQueue
	Logger           *slog.Logger
}

// NewPollOrchestrator creates a new poll orchestrator.
func NewPollOrchestrator(cfg PollOrchestratorConfig) *PollOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PollOrchestrator{
		monitorStore:     cfg.MonitorStore,
		bucketStore:      cfg.BucketStore,
		runLogStore:      cfg.RunLogStore,
		connectorFactory: cfg.ConnectorFactory,
		detector:         cfg.Detector,
		classifier:       cfg.Classifier,
		filer:            cfg.Filer,
		lock:             cfg.Lock,
		taskQueue:        cfg.TaskQueue,
		logger:           logger,
	}
}

// Poll executes one ingestion run for a config.
func (o *PollOrchestrator) Poll(ctx context.Context, configID string) (*domain.PollResult, error) {
	start := time.Now()

	cfg, err := o.monitorStore.Get(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	if !cfg.Runnable() {
		o.logger.Info("config not runnable, skipping", "config_id", configID, "enabled", cfg.Enabled)
		return &domain.PollResult{
			ConfigID: configID,
			Status:   domain.RunStatusSuccess,
			Summary:  "skipped: config disabled or missing bucket",
			Duration: time.Since(start).Seconds(),
		}, nil
	}

	lockKey := "poll:" + cfg.ID
	acquired, err := o.lock.Acquire(ctx, lockKey, pollLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire poll lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrPollInProgress
	}
	defer func() {
		if err := o.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			o.logger.Warn("failed to release poll lock", "key", lockKey, "error", err)
		}
	}()

	o.logger.Info("starting poll run",
		"config_id", cfg.ID, "provider", cfg.Provider, "mailbox", cfg.Credentials.Mailbox)

	bucket, err := o.bucketStore.Get(ctx, cfg.BucketID)
	if err != nil {
		return o.failRun(ctx, cfg, start, domain.PollStats{}, fmt.Errorf("failed to get bucket: %w", err))
	}

	connector, err := o.connectorFactory.Create(cfg.Provider)
	if err != nil {
		return o.failRun(ctx, cfg, start, domain.PollStats{}, fmt.Errorf("failed to create connector: %w", err))
	}

	token, err := connector.Authenticate(ctx, cfg)
	if err != nil {
		return o.failRun(ctx, cfg, start, domain.PollStats{}, fmt.Errorf("%w: %v", domain.ErrAuthFailed, err))
	}

	messages, err := connector.ListCandidateMessages(ctx, cfg, token)
	if err != nil {
		return o.failRun(ctx, cfg, start, domain.PollStats{}, fmt.Errorf("failed to list messages: %w", err))
	}

	stats := domain.PollStats{EmailsFound: len(messages)}

	for _, msg := range messages {
		o.processMessage(ctx, cfg, bucket, connector, token, msg, &stats)
	}

	// The cursor moves to the run's start time even after a partial run:
	// failed messages are not retried by cursor rewind, they surface in
	// the run log instead.
	if err := o.monitorStore.AdvanceCursor(ctx, cfg.ID, start); err != nil {
		o.logger.Error("failed to advance cursor", "config_id", cfg.ID, "error", err)
		stats.Errors++
	}

	return o.finishRun(ctx, cfg, start, stats, "")
}

// processMessage handles one candidate email. Errors degrade the run to
// partial but never abort it.
func (o *PollOrchestrator) processMessage(ctx context.Context, cfg *domain.MonitorConfig, bucket *domain.Bucket, connector driven.MailConnector, token string, msg domain.MessageRef, stats *domain.PollStats) {
	failed := false

	attachments, err := connector.FetchPDFAttachments(ctx, cfg, token, msg)
	if err != nil {
		// The message still gets the failure action below so a broken
		// email does not sit unread in the mailbox forever.
		o.logger.Error("failed to fetch attachments",
			"config_id", cfg.ID, "message_id", msg.ID, "error", err)
		stats.Errors++
		failed = true
	}

	for i := range attachments {
		if err := o.processAttachment(ctx, cfg, bucket, &attachments[i], stats); err != nil {
			o.logger.Error("failed to process attachment",
				"config_id", cfg.ID, "message_id", msg.ID,
				"file_name", attachments[i].Filename, "error", err)
			stats.Errors++
			failed = true
		}
	}

	// Post-processing is best effort: the classification outcome is
	// already committed, so a mailbox hiccup here only gets logged.
	action, folder := cfg.ActionForOutcome(!failed)
	if action == domain.ActionNone {
		return
	}
	if err := connector.ApplyPostProcess(ctx, cfg, token, msg, action, folder); err != nil {
		o.logger.Warn("post-process action failed",
			"config_id", cfg.ID, "message_id", msg.ID,
			"action", action, "error", err)
	}
}

// processAttachment classifies and files one PDF.
func (o *PollOrchestrator) processAttachment(ctx context.Context, cfg *domain.MonitorConfig, bucket *domain.Bucket, att *domain.PDFAttachment, stats *domain.PollStats) error {
	stats.PDFsProcessed++

	barcodes, err := o.detector.Detect(ctx, att.Data, att.Filename)
	if err != nil {
		return fmt.Errorf("barcode detection failed: %w", err)
	}

	cls, err := o.classifier.Classify(ctx, barcodes)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if cls == nil {
		if _, err := o.filer.Quarantine(ctx, bucket, att, barcodes, domain.SourceTypeEmail, cfg.ID); err != nil {
			return err
		}
		stats.Unindexed++
		return nil
	}

	dest := bucket
	if cls.BucketID != "" && cls.BucketID != bucket.ID {
		// Pattern-level bucket override.
		dest, err = o.bucketStore.Get(ctx, cls.BucketID)
		if err != nil {
			return fmt.Errorf("failed to get override bucket: %w", err)
		}
	}

	if _, err := o.filer.File(ctx, dest, cls, att); err != nil {
		return err
	}
	stats.Indexed++
	return nil
}

// TriggerPoll enqueues an on-demand run for a config.
func (o *PollOrchestrator) TriggerPoll(ctx context.Context, configID string) (*domain.Task, error) {
	cfg, err := o.monitorStore.Get(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	task := domain.NewPollConfigTask(cfg.ID)
	if err := o.taskQueue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to enqueue poll task: %w", err)
	}

	o.logger.Info("poll task enqueued", "config_id", cfg.ID, "task_id", task.ID)
	return task, nil
}

// ListRunLogs retrieves run history, newest first.
func (o *PollOrchestrator) ListRunLogs(ctx context.Context, configID string, limit, offset int) ([]*domain.PollRunLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return o.runLogStore.List(ctx, configID, limit, offset)
}

// LatestRun retrieves the most recent run for a config.
func (o *PollOrchestrator) LatestRun(ctx context.Context, configID string) (*domain.PollRunLog, error) {
	return o.runLogStore.Latest(ctx, configID)
}

// finishRun writes the run log and builds the result.
func (o *PollOrchestrator) finishRun(ctx context.Context, cfg *domain.MonitorConfig, start time.Time, stats domain.PollStats, errMsg string) (*domain.PollResult, error) {
	status := stats.Status()
	if errMsg != "" {
		status = domain.RunStatusFailure
	}

	runLog := domain.NewPollRunLog(cfg, status, stats, errMsg)
	if err := o.runLogStore.Save(ctx, runLog); err != nil {
		o.logger.Error("failed to save run log", "config_id", cfg.ID, "error", err)
	}

	result := &domain.PollResult{
		ConfigID: cfg.ID,
		Status:   status,
		Stats:    stats,
		Summary:  stats.Summary(),
		Duration: time.Since(start).Seconds(),
	}

	o.logger.Info("poll run finished",
		"config_id", cfg.ID,
		"status", status,
		"summary", result.Summary,
		"duration", result.Duration)

	return result, nil
}

// failRun records a fatal run failure. The cursor is left untouched so
// the next run re-examines the same window.
func (o *PollOrchestrator) failRun(ctx context.Context, cfg *domain.MonitorConfig, start time.Time, stats domain.PollStats, runErr error) (*domain.PollResult, error) {
	o.logger.Error("poll run failed", "config_id", cfg.ID, "error", runErr)

	runLog := domain.NewPollRunLog(cfg, domain.RunStatusFailure, stats, runErr.Error())
	if err := o.runLogStore.Save(ctx, runLog); err != nil {
		o.logger.Error("failed to save run log", "config_id", cfg.ID, "error", err)
	}

	return &domain.PollResult{
		ConfigID: cfg.ID,
		Status:   domain.RunStatusFailure,
		Stats:    stats,
		Summary:  stats.Summary(),
		Duration: time.Since(start).Seconds(),
		Error:    runErr.Error(),
	}, nil
}
