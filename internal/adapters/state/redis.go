// Package state holds the Redis-backed adapters for ports.VelocityStore,
// ports.ProfileTable, and ports.FeedbackRepository, grounded on the
// teacher's internal/adapters/cache Redis stores (redis_connect.go,
// redis_lockout_store.go): a thin *redis.Client wrapper per port, fixed
// key prefixes, TTLs sized to the data's natural lifetime.
package state

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect initializes a Redis client from either a redis:// URL or a bare
// host:port, matching the teacher's Connect helper exactly.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func velocityWindowKey(payerID string, bucketUnix int64) string {
	return "velocity-windows:" + payerID + ":" + strconv.FormatInt(bucketUnix, 10)
}

func currentVelocityKey(payerID string) string {
	return "current-velocity:" + payerID
}

func profileKey(payerID string) string {
	return "customer-profiles:" + payerID
}

const feedbackListKey = "analyst-feedback:records"
