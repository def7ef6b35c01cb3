package redis

import (
	"context"
	"github.com/redis/go-redis/v9"
	"time"
)

const attemptPrefix = "login:attempts:"

type RedisAttemptRepo struct {
	client *redis.Client
}

func NewRedisAttemptRepo(client *redis.Client) *RedisAttemptRepo {
	return &RedisAttemptRepo{
		client: client,
	}
}

// RegisterAttempt bumps the counter; the window starts with the first attempt
// and is not extended by later ones.
func (r *RedisAttemptRepo) RegisterAttempt(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := attemptPrefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, safeTTL(window))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *RedisAttemptRepo) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, attemptPrefix+key).Err()
}

func (r *RedisAttemptRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func safeTTL(window time.Duration) time.Duration {
	if window <= 0 {
		// keys must always expire
		return time.Minute
	}
	return window
}
