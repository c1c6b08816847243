package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

func setupTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	q, err := NewQueue(client, "test-worker")
	if err != nil {
		t.Fatalf("failed to create queue: %v", err)
	}
	return q, mr
}

func TestQueue_EnqueueDequeueAck(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	task := domain.NewPollConfigTask("cfg-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got == nil {
		t.Fatal("expected a task")
	}
	if got.ConfigID() != "cfg-1" {
		t.Errorf("wrong payload: %+v", got.Payload)
	}
	if got.Status != domain.TaskStatusProcessing {
		t.Errorf("expected processing status, got %s", got.Status)
	}
	if got.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", got.Attempts)
	}

	if err := q.Ack(ctx, got.ID); err != nil {
		t.Fatalf("ack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != domain.TaskStatusCompleted {
		t.Errorf("expected completed status, got %s", stored.Status)
	}
}

func TestQueue_DequeueEmpty(t *testing.T) {
	q, _ := setupTestQueue(t)

	got, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no task, got %+v", got)
	}
}

func TestQueue_NackExhaustsAttempts(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	// Poll tasks run once; a nack marks them failed rather than retrying.
	task := domain.NewPollConfigTask("cfg-1")
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil || got == nil {
		t.Fatalf("dequeue: %v %v", got, err)
	}

	if err := q.Nack(ctx, got.ID, "connector timeout"); err != nil {
		t.Fatalf("nack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != domain.TaskStatusFailed {
		t.Errorf("expected failed status, got %s", stored.Status)
	}
	if stored.Error != "connector timeout" {
		t.Errorf("expected error recorded, got %q", stored.Error)
	}

	// The failed task must not come back.
	again, err := q.Dequeue(ctx, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if again != nil {
		t.Fatalf("expected empty queue, got %+v", again)
	}
}

func TestQueue_NackRetriesWhileAttemptsRemain(t *testing.T) {
	q, mr := setupTestQueue(t)
	ctx := context.Background()

	task := domain.NewPollConfigTask("cfg-1")
	task.MaxAttempts = 3
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil || got == nil {
		t.Fatalf("dequeue: %v %v", got, err)
	}
	if err := q.Nack(ctx, got.ID, "transient"); err != nil {
		t.Fatalf("nack: %v", err)
	}

	stored, err := q.GetTask(ctx, got.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != domain.TaskStatusPending {
		t.Errorf("expected pending status, got %s", stored.Status)
	}
	if !stored.ScheduledFor.After(time.Now()) {
		t.Error("expected retry scheduled in the future")
	}

	// Past the backoff, the task is promoted and delivered again.
	mr.FastForward(10 * time.Second)
	retried, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue retry: %v", err)
	}
	if retried == nil || retried.ID != got.ID {
		t.Fatalf("expected retried task, got %+v", retried)
	}
	if retried.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", retried.Attempts)
	}
}

func TestQueue_ScheduledTaskNotDeliveredEarly(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	task := domain.NewPollConfigTask("cfg-1")
	task.ScheduledFor = time.Now().Add(time.Hour)
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := q.Dequeue(ctx, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got != nil {
		t.Fatalf("scheduled task delivered early: %+v", got)
	}
}

func TestQueue_Stats(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	q.Enqueue(ctx, domain.NewPollConfigTask("cfg-1"))
	q.Enqueue(ctx, domain.NewPollConfigTask("cfg-2"))

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Pending != 2 {
		t.Errorf("expected 2 pending, got %d", stats.Pending)
	}

	got, _ := q.Dequeue(ctx, 100*time.Millisecond)
	q.Ack(ctx, got.ID)

	stats, err = q.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Completed != 1 {
		t.Errorf("expected 1 completed, got %d", stats.Completed)
	}
	if stats.Pending != 1 {
		t.Errorf("expected 1 pending, got %d", stats.Pending)
	}
}
