package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recordingReindexer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingReindexer) ReindexOne(ctx context.Context, experienceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, experienceID)
	return nil
}

func (r *recordingReindexer) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestQueueProcessesEnqueuedJobs(t *testing.T) {
	rec := &recordingReindexer{}
	q := NewQueue(rec, 8, zap.NewNop())
	q.Start(context.Background())

	q.Enqueue("1")
	q.Enqueue("2")
	q.Stop()

	got := rec.seen()
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected jobs [1 2], got %v", got)
	}
}

func TestEnqueueNeverBlocksWhenFull(t *testing.T) {
	rec := &recordingReindexer{}
	q := NewQueue(rec, 1, zap.NewNop())
	// Consumer not started: the buffer fills and extra jobs are dropped.

	done := make(chan struct{})
	go func() {
		q.Enqueue("1")
		q.Enqueue("2")
		q.Enqueue("3")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func TestStopDrainsBufferedJobs(t *testing.T) {
	rec := &recordingReindexer{}
	q := NewQueue(rec, 8, zap.NewNop())

	q.Enqueue("1")
	q.Enqueue("2")
	q.Start(context.Background())
	q.Stop()

	if got := rec.seen(); len(got) != 2 {
		t.Fatalf("expected buffered jobs drained, got %v", got)
	}
}
