package state

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// RedisProfileTable implements ports.ProfileTable as a JSON-valued string
// key per payer, materializing the compacted customerProfiles topic the
// way a Kafka Streams builder.table(...) would. No TTL: a profile snapshot
// replaces the prior one and stays current until the next Upsert.
type RedisProfileTable struct {
	client *redis.Client
}

func NewRedisProfileTable(client *redis.Client) *RedisProfileTable {
	return &RedisProfileTable{client: client}
}

func (t *RedisProfileTable) Upsert(ctx context.Context, p domain.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return t.client.Set(ctx, profileKey(p.PayerID), raw, 0).Err()
}

func (t *RedisProfileTable) Get(ctx context.Context, payerID string) (domain.Profile, bool, error) {
	raw, err := t.client.Get(ctx, profileKey(payerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Profile{}, false, err
	}
	return p, true, nil
}
