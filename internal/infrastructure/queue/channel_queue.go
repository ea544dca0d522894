package queue

import (
	"context"
	"sync"

	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/metrics"
)

// ChannelQueue is an in-process FIFO job queue. The application owns one
// instance and hands it to both the upload service and the worker pool.
type ChannelQueue struct {
	jobs   chan repositories.TranscodeJob
	closed chan struct{}
	once   sync.Once
}

func NewChannelQueue(capacity int) *ChannelQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &ChannelQueue{
		jobs:   make(chan repositories.TranscodeJob, capacity),
		closed: make(chan struct{}),
	}
}

func (q *ChannelQueue) Enqueue(ctx context.Context, job repositories.TranscodeJob) error {
	select {
	case <-q.closed:
		return repositories.ErrQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		metrics.QueueDepth.Inc()
		return nil
	case <-q.closed:
		return repositories.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ChannelQueue) Dequeue(ctx context.Context) (repositories.TranscodeJob, error) {
	select {
	case job := <-q.jobs:
		metrics.QueueDepth.Dec()
		return job, nil
	case <-q.closed:
		return repositories.TranscodeJob{}, repositories.ErrQueueClosed
	case <-ctx.Done():
		return repositories.TranscodeJob{}, ctx.Err()
	}
}

func (q *ChannelQueue) Len() int {
	return len(q.jobs)
}

// Close stops the queue. Jobs still buffered are dropped; their records stay
// queued and are re-enqueued on the next start.
func (q *ChannelQueue) Close() {
	q.once.Do(func() { close(q.closed) })
}
