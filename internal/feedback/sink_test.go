package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/agenticfraud/fraud-pipeline/internal/analyzer"
	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

type memRepo struct {
	records []domain.FeedbackRecord
}

func (m *memRepo) Record(_ context.Context, r domain.FeedbackRecord) error {
	m.records = append(m.records, r)
	return nil
}

func TestHandleRecordsWellFormedFeedback(t *testing.T) {
	repo := &memRepo{}
	sink := New(analyzer.NewFeedbackSink(repo))

	payload := []byte(`{"transactionId":"evt-1","actualFraud":true,"feedback":"confirmed by analyst"}`)
	if err := sink.Handle(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.records) != 1 || repo.records[0].EventID != "evt-1" {
		t.Fatalf("expected one recorded feedback entry, got %+v", repo.records)
	}
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	sink := New(analyzer.NewFeedbackSink(&memRepo{}))

	err := sink.Handle(context.Background(), []byte(`not json`))
	if !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestHandleRejectsMissingEventID(t *testing.T) {
	sink := New(analyzer.NewFeedbackSink(&memRepo{}))

	err := sink.Handle(context.Background(), []byte(`{"actualFraud":false,"feedback":"ok"}`))
	if !errors.Is(err, domain.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for missing transactionId, got %v", err)
	}
}
