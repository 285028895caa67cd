package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/testutil"
)

func enrichedFixture() domain.EnrichedEvent {
	return domain.EnrichedEvent{
		Event: domain.Event{
			EventID:          "evt-1",
			PayerID:          "CUST-001",
			Amount:           54,
			Currency:         "USD",
			MerchantID:       "M-1",
			MerchantCategory: "ONLINE",
			Location:         "Unknown Location",
			Timestamp:        domain.NewWireTime(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)),
		},
	}
}

func TestAnalyzeReturnsScoredOpinion(t *testing.T) {
	fake := &testutil.FakeScorer{Risk: 0.8}
	opinion := behaviorAnalyzer.Analyze(context.Background(), fake, enrichedFixture(), 3)

	if opinion.AnalyzerID != "behavior" {
		t.Fatalf("expected analyzer id 'behavior', got %q", opinion.AnalyzerID)
	}
	if opinion.Risk != 0.8 {
		t.Fatalf("expected risk 0.8, got %v", opinion.Risk)
	}
	if opinion.Confidence() != 0.8 {
		t.Fatalf("expected confidence == risk, got %v", opinion.Confidence())
	}
	if fake.Calls() != 1 {
		t.Fatalf("expected exactly one scorer call, got %d", fake.Calls())
	}
}

func TestAnalyzeFailsOverToNeutralOpinion(t *testing.T) {
	fake := &testutil.FakeScorer{Err: errors.New("service down")}
	opinion := patternAnalyzer.Analyze(context.Background(), fake, enrichedFixture(), 3)

	if opinion.Risk != 0.5 {
		t.Fatalf("expected neutral risk 0.5 on scorer failure, got %v", opinion.Risk)
	}
	if opinion.Recommendation != "manual review required" {
		t.Fatalf("expected manual-review recommendation, got %q", opinion.Recommendation)
	}
}

func TestCollaborateSuffixesOpinionID(t *testing.T) {
	fake := &testutil.FakeScorer{Risk: 0.4}
	opinion := temporalAnalyzer.Collaborate(context.Background(), fake, enrichedFixture(), "does this align?")

	if opinion.AnalyzerID != "temporal-collab" {
		t.Fatalf("expected '-collab' suffix, got %q", opinion.AnalyzerID)
	}
}

func TestCatalogListsAllFiveSpecializations(t *testing.T) {
	entries := Catalog()
	if len(entries) != 5 {
		t.Fatalf("expected 5 catalog entries, got %d", len(entries))
	}
	ids := map[string]bool{}
	for _, e := range entries {
		ids[e.ID] = true
	}
	for _, want := range []string{"behavior", "pattern", "risk", "geographic", "temporal"} {
		if !ids[want] {
			t.Errorf("missing catalog entry for %q", want)
		}
	}
}

func TestWeightForFallsBackToCollaborationWeight(t *testing.T) {
	if got := WeightFor("behavior"); got != WeightBehavior {
		t.Fatalf("expected behavior weight %v, got %v", WeightBehavior, got)
	}
	if got := WeightFor("consensus"); got != WeightCollaboration {
		t.Fatalf("expected consensus to fall back to collaboration weight, got %v", got)
	}
}
