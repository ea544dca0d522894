package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultPollTimeout = 5 * time.Second

// RedisQueue is a JobQueue on a Redis list: producers LPUSH, consumers BRPOP,
// so jobs are served in enqueue order across processes.
type RedisQueue struct {
	rdb         *redis.Client
	key         string
	pollTimeout time.Duration
	log         *zap.Logger
}

func NewRedisQueue(rdb *redis.Client, key string, log *zap.Logger) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key, pollTimeout: defaultPollTimeout, log: logger.Named(log, "redis_queue")}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job repositories.TranscodeJob) error {
	payload, err := SerializeJob(job)
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	metrics.QueueDepth.Inc()
	return nil
}

// Dequeue polls with a bounded BRPOP so ctx cancellation is noticed promptly.
// Malformed payloads are logged and skipped.
func (q *RedisQueue) Dequeue(ctx context.Context) (repositories.TranscodeJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return repositories.TranscodeJob{}, err
		}
		val, err := q.rdb.BRPop(ctx, q.pollTimeout, q.key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case errors.Is(err, redis.ErrClosed):
			return repositories.TranscodeJob{}, repositories.ErrQueueClosed
		case err != nil:
			if ctx.Err() != nil {
				return repositories.TranscodeJob{}, ctx.Err()
			}
			return repositories.TranscodeJob{}, fmt.Errorf("brpop %s: %w", q.key, err)
		}

		metrics.QueueDepth.Dec()
		// val[0] is the list name, val[1] the payload
		job, err := DeserializeJob(val[1])
		if err != nil {
			q.log.Error("dropping malformed job", zap.String("payload", val[1]), zap.Error(err))
			continue
		}
		return job, nil
	}
}
