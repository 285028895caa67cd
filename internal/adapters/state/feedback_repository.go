package state

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// RedisFeedbackRepository implements ports.FeedbackRepository as an
// append-only Redis list, the write-then-done style of the teacher's
// outbox/dedup repositories with no corresponding read path exposed to the
// decision path (spec.md §9).
type RedisFeedbackRepository struct {
	client *redis.Client
}

func NewRedisFeedbackRepository(client *redis.Client) *RedisFeedbackRepository {
	return &RedisFeedbackRepository{client: client}
}

func (r *RedisFeedbackRepository) Record(ctx context.Context, record domain.FeedbackRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, feedbackListKey, raw).Err()
}
