// Package worker runs fire-and-forget reindex jobs off the request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wayfarer-app/wayfarer/internal/metrics"
)

// Reindexer converges the index document of a single experience.
type Reindexer interface {
	ReindexOne(ctx context.Context, experienceID string) error
}

// Queue consumes single-experience reindex jobs from a buffered channel.
// Enqueue never blocks the caller: mutations return immediately and the
// index catches up. The periodic sweep repairs anything dropped here.
type Queue struct {
	jobs    chan string
	reindex Reindexer
	log     *zap.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(reindex Reindexer, buffer int, log *zap.Logger) *Queue {
	if buffer <= 0 {
		buffer = 256
	}
	return &Queue{
		jobs:    make(chan string, buffer),
		reindex: reindex,
		log:     log,
	}
}

// Start launches the consumer goroutine. It runs until Stop is called and
// the channel drains, or ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-q.jobs:
				if !ok {
					return
				}
				if err := q.reindex.ReindexOne(ctx, id); err != nil {
					metrics.ReindexJobFailed()
					q.log.Warn("background reindex failed",
						zap.String("experience_id", id), zap.Error(err))
				} else {
					metrics.ReindexJobOK()
				}
			}
		}
	}()
}

// Enqueue schedules a reindex of one experience. When the buffer is full
// the job is dropped; the periodic sweep will pick the experience up.
func (q *Queue) Enqueue(experienceID string) {
	select {
	case q.jobs <- experienceID:
	default:
		metrics.ReindexJobDropped()
		q.log.Warn("reindex queue full, dropping job",
			zap.String("experience_id", experienceID))
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.jobs) })
	q.wg.Wait()
}
