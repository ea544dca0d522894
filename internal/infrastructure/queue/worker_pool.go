package queue

import (
	"context"
	"sync"
	"time"

	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/logger"

	"go.uber.org/zap"
)

const (
	defaultRetryMin = time.Second
	defaultRetryMax = 30 * time.Second
)

// WorkerPool runs a fixed number of workers against one queue. The worker
// count bounds how many transcodes run at once; everything else waits in the
// queue in FIFO order.
type WorkerPool struct {
	queue   repositories.JobQueue
	handler JobHandler
	size    int
	log     *zap.Logger

	// Delay between failed dequeues, doubling from retryMin up to retryMax.
	retryMin time.Duration
	retryMax time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewWorkerPool(workerCount int, queue repositories.JobQueue, handler JobHandler, log *zap.Logger) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		queue:    queue,
		handler:  handler,
		size:     workerCount,
		retryMin: defaultRetryMin,
		retryMax: defaultRetryMax,
		log:      logger.Named(log, "worker_pool"),
		inFlight: make(map[string]struct{}),
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.size; i++ {
		worker := &Worker{
			ID:      i,
			Queue:   p.queue,
			Handler: p.handler,
			Wg:      &p.wg,
			pool:    p,
			log:     p.log,
		}
		p.wg.Add(1)
		worker.Start(ctx)
	}
	p.log.Info("worker pool started", zap.Int("workers", p.size))
}

// Shutdown stops taking new jobs and waits for running ones, or for ctx.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) claim(videoID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[videoID]; busy {
		return false
	}
	p.inFlight[videoID] = struct{}{}
	return true
}

func (p *WorkerPool) release(videoID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, videoID)
}

// InFlight reports how many jobs are currently being handled.
func (p *WorkerPool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inFlight)
}

func (p *WorkerPool) nextDelay(prev time.Duration) time.Duration {
	if prev <= 0 {
		return p.retryMin
	}
	next := prev * 2
	if next > p.retryMax {
		next = p.retryMax
	}
	return next
}
