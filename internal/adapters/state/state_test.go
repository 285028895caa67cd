package state

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisVelocityStoreIsKInclusive(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewRedisVelocityStore(client)
	ctx := context.Background()
	windowStart := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		count, err := store.IncrementWindow(ctx, "CUST-1", windowStart, 5*time.Minute)
		require.NoError(t, err)
		require.Equal(t, int64(i), count, "the %d-th increment should observe count %d", i, i)
	}

	current, ok, err := store.CurrentVelocity(ctx, "CUST-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), current)
}

func TestRedisVelocityStoreUnknownPayerReturnsNotOK(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewRedisVelocityStore(client)
	_, ok, err := store.CurrentVelocity(context.Background(), "CUST-UNKNOWN")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisProfileTableRoundTrips(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	table := NewRedisProfileTable(client)
	ctx := context.Background()

	profile := domain.Profile{
		PayerID:           "CUST-1",
		AverageAmount:     253,
		DailyLimit:        2000,
		TypicalCategories: []string{"ONLINE", "RETAIL"},
		PrimaryLocation:   "Los Angeles",
		RiskTier:          domain.RiskTierLow,
	}
	require.NoError(t, table.Upsert(ctx, profile))

	got, ok, err := table.Get(ctx, "CUST-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, profile, got)
}

func TestRedisProfileTableMissingPayerReturnsNotOK(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	table := NewRedisProfileTable(client)
	_, ok, err := table.Get(context.Background(), "CUST-MISSING")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisFeedbackRepositoryAppendsWithoutExposingRead(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	repo := NewRedisFeedbackRepository(client)
	ctx := context.Background()

	err := repo.Record(ctx, domain.FeedbackRecord{
		EventID:     "evt-1",
		ActualFraud: true,
		Feedback:    "confirmed",
		Timestamp:   time.Now().UTC(),
	})
	require.NoError(t, err)

	length, err := client.LLen(ctx, feedbackListKey).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), length)
}
