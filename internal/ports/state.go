package ports

import (
	"context"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// VelocityStore is the materialized state behind the enrichment topology's
// windowed velocity join. It models two Kafka Streams stores from
// original_source/streaming/FraudStreams.java as one port: the tumbling
// window counter ("velocity-windows") and the latest-count projection
// ("current-velocity").
type VelocityStore interface {
	// IncrementWindow increments the tumbling window covering windowStart
	// and returns the window's count after the increment (inclusive of this
	// call). It also updates the current-velocity projection for payerID to
	// this value, resolving spec.md §9's open question: the triggering
	// event observes its own increment (count k, not k-1).
	IncrementWindow(ctx context.Context, payerID string, windowStart time.Time, windowSize time.Duration) (int64, error)

	// CurrentVelocity returns the latest window count known for payerID, or
	// ok=false if the payer has never been observed.
	CurrentVelocity(ctx context.Context, payerID string) (count int64, ok bool, err error)
}

// ProfileTable is the materialized view of the compacted customerProfiles
// topic (a KTable in original_source). Upsert is called on each snapshot;
// Get performs the enrichment stage's profile left-join.
type ProfileTable interface {
	Upsert(ctx context.Context, profile domain.Profile) error
	Get(ctx context.Context, payerID string) (domain.Profile, bool, error)
}

// FeedbackRepository is the write-only sink behind the analyst-feedback
// consumer. No read path is exposed to the decision path, per spec.md §9's
// resolution of the "knowledgeBase" open question.
type FeedbackRepository interface {
	Record(ctx context.Context, record domain.FeedbackRecord) error
}
