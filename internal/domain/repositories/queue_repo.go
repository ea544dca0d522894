package repositories

import (
	"context"
	"errors"
)

var ErrQueueClosed = errors.New("queue closed")

// TranscodeJob is the only queue payload. Everything else is re-read from
// the video record when the job is dequeued.
type TranscodeJob struct {
	VideoID string `json:"videoId"`
}

type JobQueue interface {
	Enqueue(ctx context.Context, job TranscodeJob) error
	// Dequeue blocks until a job is available, ctx is done or the queue closes.
	Dequeue(ctx context.Context) (TranscodeJob, error)
}
