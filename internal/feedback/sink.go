// Package feedback consumes the analyst-feedback topic and writes an
// append-only record via internal/analyzer's write-only sink, grounded on
// the teacher's internal/adapters/events outbox-style "write then done"
// handlers — no read path is exposed back into the decision path.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agenticfraud/fraud-pipeline/internal/analyzer"
	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// Sink decodes the analyst-feedback envelope and records it.
type Sink struct {
	records *analyzer.FeedbackSink
}

func New(records *analyzer.FeedbackSink) *Sink {
	return &Sink{records: records}
}

// Handle decodes payload as a domain.FeedbackRecord and records it.
// Malformed payloads are reported, not retried: the caller's bus adapter
// decides whether to skip or dead-letter them (spec.md §7).
func (s *Sink) Handle(ctx context.Context, payload []byte) error {
	var record domain.FeedbackRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}
	if record.EventID == "" {
		return fmt.Errorf("%w: transactionId is required", domain.ErrMalformedEvent)
	}
	return s.records.Record(ctx, record)
}
