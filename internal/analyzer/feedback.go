package analyzer

import (
	"context"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

// FeedbackSink is the append-only "knowledgeBase" from
// original_source/agents/AbstractFraudAgent.java, generalized per spec.md
// §9: a write-only sink with no read path influencing decisions.
type FeedbackSink struct {
	repo ports.FeedbackRepository
}

func NewFeedbackSink(repo ports.FeedbackRepository) *FeedbackSink {
	return &FeedbackSink{repo: repo}
}

func (s *FeedbackSink) Record(ctx context.Context, record domain.FeedbackRecord) error {
	return s.repo.Record(ctx, record)
}
