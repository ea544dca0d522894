package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"video-uploader/internal/domain/repositories"

	"go.uber.org/zap"
)

// JobHandler runs one transcode job to a terminal state.
type JobHandler interface {
	Handle(ctx context.Context, job repositories.TranscodeJob) error
}

type JobHandlerFunc func(ctx context.Context, job repositories.TranscodeJob) error

func (f JobHandlerFunc) Handle(ctx context.Context, job repositories.TranscodeJob) error {
	return f(ctx, job)
}

type Worker struct {
	ID      int
	Queue   repositories.JobQueue
	Handler JobHandler
	Wg      *sync.WaitGroup
	pool    *WorkerPool
	log     *zap.Logger
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		var delay time.Duration
		for {
			job, err := w.Queue.Dequeue(ctx)
			if err != nil {
				if errors.Is(err, repositories.ErrQueueClosed) || ctx.Err() != nil {
					w.log.Info("worker stopping", zap.Int("worker", w.ID))
					return
				}
				delay = w.pool.nextDelay(delay)
				w.log.Error("dequeue failed",
					zap.Int("worker", w.ID),
					zap.Duration("retry_in", delay),
					zap.Error(err))
				select {
				case <-ctx.Done():
					w.log.Info("worker stopping", zap.Int("worker", w.ID))
					return
				case <-time.After(delay):
				}
				continue
			}
			delay = 0
			w.processJob(ctx, job)
		}
	}()
}

func (w *Worker) processJob(ctx context.Context, job repositories.TranscodeJob) {
	if !w.pool.claim(job.VideoID) {
		w.log.Warn("video already being processed, dropping duplicate job",
			zap.Int("worker", w.ID), zap.String("video_id", job.VideoID))
		return
	}
	defer w.pool.release(job.VideoID)

	w.log.Info("processing job", zap.Int("worker", w.ID), zap.String("video_id", job.VideoID))
	// A started job runs to a terminal status; stopping the pool only stops dequeuing.
	if err := w.Handler.Handle(context.WithoutCancel(ctx), job); err != nil {
		w.log.Error("job failed", zap.Int("worker", w.ID), zap.String("video_id", job.VideoID), zap.Error(err))
		return
	}
	w.log.Info("job finished", zap.Int("worker", w.ID), zap.String("video_id", job.VideoID))
}
