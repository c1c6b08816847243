package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven/mocks"
)

type pollFixture struct {
	orchestrator *PollOrchestrator
	monitors     *mocks.MockMonitorStore
	buckets      *mocks.MockBucketStore
	types        *mocks.MockDocumentTypeStore
	patterns     *mocks.MockPatternStore
	docs         *mocks.MockDocumentStore
	unindexed    *mocks.MockUnindexedStore
	runLogs      *mocks.MockRunLogStore
	content      *mocks.MockContentStore
	connector    *mocks.MockMailConnector
	detector     *mocks.MockBarcodeDetector
	lock         *mocks.MockDistributedLock
	queue        *mocks.MockTaskQueue
}

func setupPoll(t *testing.T) *pollFixture {
	t.Helper()

	f := &pollFixture{
		monitors:  mocks.NewMockMonitorStore(),
		buckets:   mocks.NewMockBucketStore(),
		types:     mocks.NewMockDocumentTypeStore(),
		patterns:  mocks.NewMockPatternStore(),
		docs:      mocks.NewMockDocumentStore(),
		unindexed: mocks.NewMockUnindexedStore(),
		runLogs:   mocks.NewMockRunLogStore(),
		content:   mocks.NewMockContentStore(),
		connector: mocks.NewMockMailConnector(),
		detector:  mocks.NewMockBarcodeDetector(),
		lock:      mocks.NewMockDistributedLock(),
		queue:     mocks.NewMockTaskQueue(),
	}

	classifier := NewClassifier(f.patterns, f.types, nil)
	filer := NewFiler(f.content, f.docs, f.unindexed, nil)

	f.orchestrator = NewPollOrchestrator(PollOrchestratorConfig{
		MonitorStore:     f.monitors,
		BucketStore:      f.buckets,
		RunLogStore:      f.runLogs,
		ConnectorFactory: mocks.NewMockConnectorFactory(f.connector),
		Detector:         f.detector,
		Classifier:       classifier,
		Filer:            filer,
		Lock:             f.lock,
		TaskQueue:        f.queue,
	})

	return f
}

func (f *pollFixture) seedConfig(t *testing.T) *domain.MonitorConfig {
	t.Helper()
	ctx := context.Background()

	f.buckets.Save(ctx, &domain.Bucket{ID: "b1", Name: "freight", Active: true})
	f.types.Save(ctx, &domain.DocumentType{ID: "dt-pod", Name: "POD", Active: true})
	f.patterns.Save(ctx, &domain.BarcodePattern{
		ID:       "p1",
		Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		Priority: 1,
		Active:   true,
	})

	cfg := &domain.MonitorConfig{
		ID:            "cfg-1",
		Name:          "ops mailbox",
		Provider:      domain.ProviderTypeOffice365,
		BucketID:      "b1",
		PollInterval:  5 * time.Minute,
		SuccessAction: domain.ActionMarkRead,
		FailureAction: domain.ActionMove,
		FailureFolder: "Failed",
		Enabled:       true,
	}
	if err := f.monitors.Save(ctx, cfg); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	return cfg
}

func TestPoll_IndexesClassifiedAttachment(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	msg := domain.MessageRef{ID: "m1", Subject: "PODs", ReceivedAt: time.Now()}
	f.connector.ListCandidatesFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
		return []domain.MessageRef{msg}, nil
	}
	f.connector.FetchPDFAttachmentsFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string, m domain.MessageRef) ([]domain.PDFAttachment, error) {
		return []domain.PDFAttachment{{Filename: "scan.pdf", Data: []byte("%PDF"), PageCount: 2}}, nil
	}
	f.detector.Barcodes["scan.pdf"] = []string{"POD-55501"}

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunStatusSuccess {
		t.Errorf("expected success, got %s (%s)", result.Status, result.Error)
	}
	if result.Stats.EmailsFound != 1 || result.Stats.PDFsProcessed != 1 || result.Stats.Indexed != 1 {
		t.Errorf("wrong stats: %+v", result.Stats)
	}

	docs, _ := f.docs.List(ctx, "b1", 10, 0)
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].DocumentType != "POD" || docs[0].DetailLineID != "55501" || docs[0].PageCount != 2 {
		t.Errorf("wrong document: %+v", docs[0])
	}

	// Success action was applied to the consumed message.
	if len(f.connector.PostProcessed) != 1 || f.connector.PostProcessed[0].Action != domain.ActionMarkRead {
		t.Errorf("post-process not applied: %+v", f.connector.PostProcessed)
	}

	// Cursor advanced and run logged.
	cfg, _ := f.monitors.Get(ctx, "cfg-1")
	if cfg.LastCheck == nil {
		t.Error("cursor not advanced")
	}
	logs := f.runLogs.Logs()
	if len(logs) != 1 || logs[0].Status != domain.RunStatusSuccess {
		t.Errorf("run not logged: %+v", logs)
	}
}

func TestPoll_QuarantinesUnmatchedAttachment(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	f.connector.ListCandidatesFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
		return []domain.MessageRef{{ID: "m1"}}, nil
	}
	f.connector.FetchPDFAttachmentsFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string, m domain.MessageRef) ([]domain.PDFAttachment, error) {
		return []domain.PDFAttachment{{Filename: "mystery.pdf", Data: []byte("%PDF"), PageCount: 1}}, nil
	}
	// A barcode was detected but no pattern resolves it.
	f.detector.Barcodes["mystery.pdf"] = []string{"WEIRD_LABEL"}

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Review-queue routing is a processing success, not an error.
	if result.Status != domain.RunStatusSuccess || result.Stats.Unindexed != 1 || result.Stats.Indexed != 0 {
		t.Errorf("wrong outcome: %s %+v", result.Status, result.Stats)
	}

	items, _ := f.unindexed.List(ctx, "", domain.UnindexedStatusPending, 10, 0)
	if len(items) != 1 {
		t.Fatalf("expected 1 review item, got %d", len(items))
	}
	if len(items[0].DetectedBarcodes) != 1 || items[0].DetectedBarcodes[0] != "WEIRD_LABEL" {
		t.Errorf("detected barcodes not preserved: %v", items[0].DetectedBarcodes)
	}
	if items[0].SourceConfigID != "cfg-1" {
		t.Errorf("source not recorded: %+v", items[0])
	}
}

func TestPoll_MessageFailureIsolation(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	f.connector.ListCandidatesFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
		return []domain.MessageRef{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}, nil
	}
	f.connector.FetchPDFAttachmentsFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string, m domain.MessageRef) ([]domain.PDFAttachment, error) {
		if m.ID == "m2" {
			return nil, errors.New("download timeout")
		}
		return []domain.PDFAttachment{{Filename: m.ID + ".pdf", Data: []byte("%PDF"), PageCount: 1}}, nil
	}
	f.detector.Barcodes["m1.pdf"] = []string{"POD-1"}
	f.detector.Barcodes["m3.pdf"] = []string{"POD-3"}

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunStatusPartial {
		t.Errorf("expected partial, got %s", result.Status)
	}
	if result.Stats.Indexed != 2 || result.Stats.Errors != 1 {
		t.Errorf("wrong stats: %+v", result.Stats)
	}

	// The failed message did not stop the cursor.
	cfg, _ := f.monitors.Get(ctx, "cfg-1")
	if cfg.LastCheck == nil {
		t.Error("cursor not advanced after partial run")
	}
}

func TestPoll_FailedAttachmentGetsFailureAction(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	f.connector.ListCandidatesFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
		return []domain.MessageRef{{ID: "m1"}}, nil
	}
	f.connector.FetchPDFAttachmentsFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string, m domain.MessageRef) ([]domain.PDFAttachment, error) {
		return []domain.PDFAttachment{{Filename: "scan.pdf", Data: []byte("%PDF"), PageCount: 1}}, nil
	}
	f.detector.DetectFn = func(ctx context.Context, data []byte, filename string) ([]string, error) {
		return nil, errors.New("detector offline")
	}

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunStatusPartial || result.Stats.Errors != 1 {
		t.Errorf("wrong outcome: %s %+v", result.Status, result.Stats)
	}

	if len(f.connector.PostProcessed) != 1 {
		t.Fatalf("expected 1 post-process call, got %d", len(f.connector.PostProcessed))
	}
	pp := f.connector.PostProcessed[0]
	if pp.Action != domain.ActionMove || pp.Folder != "Failed" {
		t.Errorf("expected failure move, got %+v", pp)
	}
}

func TestPoll_FetchFailureGetsFailureAction(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	f.connector.ListCandidatesFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
		return []domain.MessageRef{{ID: "m1"}}, nil
	}
	f.connector.FetchPDFAttachmentsFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string, m domain.MessageRef) ([]domain.PDFAttachment, error) {
		return nil, errors.New("corrupt MIME tree")
	}

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunStatusPartial || result.Stats.Errors != 1 {
		t.Errorf("wrong outcome: %s %+v", result.Status, result.Stats)
	}

	// A message whose attachments cannot be fetched is still consumed
	// with the failure action, not left untouched.
	if len(f.connector.PostProcessed) != 1 {
		t.Fatalf("expected 1 post-process call, got %d", len(f.connector.PostProcessed))
	}
	pp := f.connector.PostProcessed[0]
	if pp.Action != domain.ActionMove || pp.Folder != "Failed" {
		t.Errorf("expected failure move, got %+v", pp)
	}
}

func TestPoll_ConcurrentRunRejected(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	if ok, _ := f.lock.Acquire(ctx, "poll:cfg-1", time.Minute); !ok {
		t.Fatal("failed to seed lock")
	}

	_, err := f.orchestrator.Poll(ctx, "cfg-1")
	if !errors.Is(err, domain.ErrPollInProgress) {
		t.Fatalf("expected ErrPollInProgress, got %v", err)
	}
	if len(f.runLogs.Logs()) != 0 {
		t.Error("rejected run must not write a run log")
	}
}

func TestPoll_AuthFailure(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	f.connector.AuthenticateFn = func(ctx context.Context, cfg *domain.MonitorConfig) (string, error) {
		return "", errors.New("invalid_client")
	}

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunStatusFailure || result.Error == "" {
		t.Errorf("expected failure result, got %+v", result)
	}

	// Fatal failures leave the cursor alone so the window is re-examined.
	cfg, _ := f.monitors.Get(ctx, "cfg-1")
	if cfg.LastCheck != nil {
		t.Error("cursor must not advance on fatal failure")
	}

	logs := f.runLogs.Logs()
	if len(logs) != 1 || logs[0].Status != domain.RunStatusFailure {
		t.Errorf("failure not logged: %+v", logs)
	}

	// The lock was released; the next run can proceed.
	if f.lock.Held("poll:cfg-1") {
		t.Error("lock not released after failed run")
	}
}

func TestPoll_SkipsDisabledConfig(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	cfg := f.seedConfig(t)
	cfg.Enabled = false
	f.monitors.Save(ctx, cfg)

	result, err := f.orchestrator.Poll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.RunStatusSuccess {
		t.Errorf("expected clean skip, got %s", result.Status)
	}
	if len(f.runLogs.Logs()) != 0 {
		t.Error("skipped run must not write a run log")
	}
}

func TestPoll_UnknownConfig(t *testing.T) {
	f := setupPoll(t)

	_, err := f.orchestrator.Poll(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPoll_PatternBucketOverride(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	f.buckets.Save(ctx, &domain.Bucket{ID: "b2", Name: "claims", Active: true})
	f.patterns.Save(ctx, &domain.BarcodePattern{
		ID:       "p-claims",
		Template: domain.TokenDocumentType + "-" + domain.TokenDetailLineID,
		BucketID: "b2",
		Priority: 0,
		Active:   true,
	})

	f.connector.ListCandidatesFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
		return []domain.MessageRef{{ID: "m1"}}, nil
	}
	f.connector.FetchPDFAttachmentsFn = func(ctx context.Context, cfg *domain.MonitorConfig, token string, m domain.MessageRef) ([]domain.PDFAttachment, error) {
		return []domain.PDFAttachment{{Filename: "scan.pdf", Data: []byte("%PDF"), PageCount: 1}}, nil
	}
	f.detector.Barcodes["scan.pdf"] = []string{"POD-42"}

	if _, err := f.orchestrator.Poll(ctx, "cfg-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	override, _ := f.docs.List(ctx, "b2", 10, 0)
	if len(override) != 1 {
		t.Fatalf("expected document in override bucket, got %d", len(override))
	}
	base, _ := f.docs.List(ctx, "b1", 10, 0)
	if len(base) != 0 {
		t.Errorf("document leaked into config bucket: %d", len(base))
	}
}

func TestPoll_TriggerPoll(t *testing.T) {
	f := setupPoll(t)
	ctx := context.Background()
	f.seedConfig(t)

	task, err := f.orchestrator.TriggerPoll(ctx, "cfg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type != domain.TaskTypePollConfig || task.ConfigID() != "cfg-1" {
		t.Errorf("wrong task: %+v", task)
	}
	if f.queue.PendingCount() != 1 {
		t.Errorf("task not enqueued")
	}
}

func TestPoll_TriggerPoll_UnknownConfig(t *testing.T) {
	f := setupPoll(t)

	_, err := f.orchestrator.TriggerPoll(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
