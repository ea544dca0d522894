package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"video-uploader/internal/domain/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSerialization(t *testing.T) {
	payload, err := SerializeJob(repositories.TranscodeJob{VideoID: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"videoId":"abc"}`, payload)

	job, err := DeserializeJob(payload)
	require.NoError(t, err)
	assert.Equal(t, "abc", job.VideoID)

	_, err = DeserializeJob(`{}`)
	assert.Error(t, err)
	_, err = DeserializeJob(`not json`)
	assert.Error(t, err)
}

func TestChannelQueue_FIFO(t *testing.T) {
	q := NewChannelQueue(4)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, repositories.TranscodeJob{VideoID: id}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		job, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, job.VideoID)
	}
}

func TestChannelQueue_CloseAndCancel(t *testing.T) {
	q := NewChannelQueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	q.Close()
	q.Close()
	_, err = q.Dequeue(context.Background())
	assert.ErrorIs(t, err, repositories.ErrQueueClosed)
	assert.ErrorIs(t, q.Enqueue(context.Background(), repositories.TranscodeJob{VideoID: "x"}), repositories.ErrQueueClosed)
}

func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	q := NewChannelQueue(16)
	var running, peak, done atomic.Int32
	handler := JobHandlerFunc(func(ctx context.Context, job repositories.TranscodeJob) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		done.Add(1)
		return nil
	})

	pool := NewWorkerPool(2, q, handler, nil)
	pool.Start(context.Background())
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		require.NoError(t, q.Enqueue(context.Background(), repositories.TranscodeJob{VideoID: id}))
	}

	require.Eventually(t, func() bool { return done.Load() == 6 }, 2*time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, peak.Load(), int32(2))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
}

func TestWorkerPool_DuplicateInFlightDropped(t *testing.T) {
	q := NewChannelQueue(4)
	release := make(chan struct{})
	var mu sync.Mutex
	var handled []string
	handler := JobHandlerFunc(func(ctx context.Context, job repositories.TranscodeJob) error {
		mu.Lock()
		handled = append(handled, job.VideoID)
		mu.Unlock()
		<-release
		return nil
	})

	pool := NewWorkerPool(2, q, handler, nil)
	pool.Start(context.Background())
	require.NoError(t, q.Enqueue(context.Background(), repositories.TranscodeJob{VideoID: "same"}))
	require.Eventually(t, func() bool { return pool.InFlight() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Enqueue(context.Background(), repositories.TranscodeJob{VideoID: "same"}))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"same"}, handled)
}

func TestWorkerPool_ShutdownLetsRunningJobFinish(t *testing.T) {
	q := NewChannelQueue(4)
	started := make(chan struct{})
	finish := make(chan struct{})
	var ctxErr atomic.Value
	handler := JobHandlerFunc(func(ctx context.Context, job repositories.TranscodeJob) error {
		close(started)
		<-finish
		if err := ctx.Err(); err != nil {
			ctxErr.Store(err)
		}
		return nil
	})

	pool := NewWorkerPool(1, q, handler, nil)
	pool.Start(context.Background())
	require.NoError(t, q.Enqueue(context.Background(), repositories.TranscodeJob{VideoID: "v"}))
	<-started

	stopped := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		stopped <- pool.Shutdown(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	close(finish)

	require.NoError(t, <-stopped)
	assert.Nil(t, ctxErr.Load())
}

type failingQueue struct {
	calls atomic.Int32
}

func (q *failingQueue) Enqueue(context.Context, repositories.TranscodeJob) error {
	return errors.New("connection refused")
}

func (q *failingQueue) Dequeue(context.Context) (repositories.TranscodeJob, error) {
	q.calls.Add(1)
	return repositories.TranscodeJob{}, errors.New("connection refused")
}

func TestWorkerPool_BacksOffOnDequeueErrors(t *testing.T) {
	q := &failingQueue{}
	pool := NewWorkerPool(1, q, JobHandlerFunc(func(context.Context, repositories.TranscodeJob) error { return nil }), nil)
	pool.retryMin = 20 * time.Millisecond
	pool.retryMax = 40 * time.Millisecond

	pool.Start(context.Background())
	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))

	calls := q.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(2))
	assert.LessOrEqual(t, calls, int32(10))
}

func TestWorkerPool_ShutdownInterruptsBackoff(t *testing.T) {
	q := &failingQueue{}
	pool := NewWorkerPool(2, q, JobHandlerFunc(func(context.Context, repositories.TranscodeJob) error { return nil }), nil)
	pool.retryMin = time.Hour
	pool.retryMax = time.Hour

	pool.Start(context.Background())
	require.Eventually(t, func() bool { return q.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
}

func TestWorkerPool_NextDelay(t *testing.T) {
	pool := NewWorkerPool(1, NewChannelQueue(1), nil, nil)
	var got []time.Duration
	var d time.Duration
	for i := 0; i < 7; i++ {
		d = pool.nextDelay(d)
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}, got)
	assert.Equal(t, time.Second, pool.nextDelay(0))
}
