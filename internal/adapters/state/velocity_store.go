package state

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisVelocityStore implements ports.VelocityStore using an INCR+EXPIRE
// counter per (payer, window bucket), mirroring the teacher's
// Cache.IncrWithTTL pattern, plus an overwritten "current velocity"
// projection standing in for the Java program's
// reduce((old, new) -> new) KTable.
type RedisVelocityStore struct {
	client *redis.Client
}

func NewRedisVelocityStore(client *redis.Client) *RedisVelocityStore {
	return &RedisVelocityStore{client: client}
}

// IncrementWindow increments the window bucket covering windowStart and
// returns the post-increment count, resolving spec.md §9's race condition
// as k-inclusive: this call always returns the count including the
// caller's own increment.
func (s *RedisVelocityStore) IncrementWindow(ctx context.Context, payerID string, windowStart time.Time, windowSize time.Duration) (int64, error) {
	key := velocityWindowKey(payerID, windowStart.Unix())

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, windowSize+time.Minute).Err(); err != nil {
			return 0, err
		}
	}
	if err := s.client.Set(ctx, currentVelocityKey(payerID), count, windowSize+time.Minute).Err(); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RedisVelocityStore) CurrentVelocity(ctx context.Context, payerID string) (int64, bool, error) {
	count, err := s.client.Get(ctx, currentVelocityKey(payerID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}
