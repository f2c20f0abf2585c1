package notifier

import (
	"context"
	"time"

	apperrors "swecron/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStream appends every message to a Redis stream for downstream consumers
type RedisStream struct {
	client    *redis.Client
	stream    string
	maxLength int64
	now       func() time.Time
}

// NewRedisStream creates a Redis stream notifier
func NewRedisStream(addr string, db int, stream string, maxLength int) *RedisStream {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStream{
		client:    client,
		stream:    stream,
		maxLength: int64(maxLength),
		now:       time.Now,
	}
}

// Name returns "redis"
func (r *RedisStream) Name() string {
	return "redis"
}

// Notify adds message to the stream, trimming it to roughly maxLength entries
func (r *RedisStream) Notify(ctx context.Context, message string) error {
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"message": message,
			"sent_at": r.now().UTC().Format(time.RFC3339),
		},
	}
	if r.maxLength > 0 {
		args.MaxLen = r.maxLength
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return apperrors.NewNotification(r.Name(), "XADD failed", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStream) Close() error {
	return r.client.Close()
}
