package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finsight-dev/finsight/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.AnalyzeStatementJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestQueueProcessesJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(10, 2, store)
	defer queue.Close()

	done := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		done <- job.GetID()
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	job := &jobs.AnalyzeStatementJob{RawText: "TXN:CREDIT AMT:1 ID:A1"}
	if err := queue.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("PublishAnalyzeStatement() error: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("publish should assign a job id")
	}

	select {
	case id := <-done:
		if id != job.JobID {
			t.Errorf("handler saw job %s, want %s", id, job.JobID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was never invoked")
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if got.CompletedAt == nil {
		t.Error("completed job should carry a completion timestamp")
	}
}

func TestQueueRetriesFailedJob(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient failure")
		}
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	job := &jobs.AnalyzeStatementJob{RawText: "x", MaxRetries: 2}
	if err := queue.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("PublishAnalyzeStatement() error: %v", err)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if got.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", got.RetryCount)
	}
	if attempts.Load() != 2 {
		t.Errorf("handler ran %d times, want 2", attempts.Load())
	}
}

func TestQueueExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	queue := NewQueue(10, 1, store)
	defer queue.Close()

	handler := func(ctx context.Context, job jobs.Job) error {
		return errors.New("permanent failure")
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	job := &jobs.AnalyzeStatementJob{RawText: "x", MaxRetries: 1}
	if err := queue.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("PublishAnalyzeStatement() error: %v", err)
	}

	got := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if got.Error == "" {
		t.Error("failed job should carry the last error")
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	queue := NewQueue(1, 1, nil)
	if err := queue.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := queue.PublishAnalyzeStatement(context.Background(), &jobs.AnalyzeStatementJob{}); err == nil {
		t.Error("publish after close should fail")
	}
	if err := queue.Start(context.Background(), func(context.Context, jobs.Job) error { return nil }); err == nil {
		t.Error("start after close should fail")
	}
}
