package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/testutil"
)

func fixtureEvent() domain.Event {
	return domain.Event{
		EventID:          "evt-1",
		PayerID:          "CUST-001",
		Amount:           500,
		Currency:         "USD",
		MerchantID:       "M-1",
		MerchantCategory: "ONLINE",
		Location:         "Unknown Location",
		Timestamp:        domain.NewWireTime(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)),
	}
}

func TestDecideBaselineYieldsSixOpinionsWhenAgentsAgree(t *testing.T) {
	fake := &testutil.FakeScorer{Risk: 0.2}
	c := New(fake, DefaultConfig())

	decision, err := c.Decide(context.Background(), domain.EnrichedEvent{Event: fixtureEvent()})
	if err != nil {
		t.Fatalf("expected no error when agents agree, got %v", err)
	}

	if len(decision.Opinions) != 6 {
		t.Fatalf("expected 5 phase-1 + 1 consensus opinions when agents agree, got %d", len(decision.Opinions))
	}
	if decision.Fraud {
		t.Fatalf("expected low uniform risk not to cross the fraud threshold")
	}
}

func TestDecideDisagreementWithVelocityAndProfileRunsBothCollaborationStreams(t *testing.T) {
	fake := &testutil.PromptFakeScorer{
		Default: 0.3,
		ByFocus: map[string]float64{
			"attack-pattern": 0.9,
			"location-risk":  0.1,
		},
	}
	velocity := domain.Velocity(10)
	profile := &domain.Profile{PayerID: "CUST-001", AverageAmount: 50, DailyLimit: 1000}
	c := New(fake, DefaultConfig())

	decision, err := c.Decide(context.Background(), domain.EnrichedEvent{
		Event:    fixtureEvent(),
		Profile:  profile,
		Velocity: &velocity,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(decision.Opinions) != 10 {
		t.Fatalf("expected both collaboration streams to fire with high velocity and a profile present, got %d opinions", len(decision.Opinions))
	}
}

func TestDecideHighVelocityAndProfileAddsStreamingBonus(t *testing.T) {
	velocity := domain.Velocity(10)
	profile := &domain.Profile{
		PayerID:       "CUST-001",
		AverageAmount: 50,
		DailyLimit:    1000,
		RiskTier:      domain.RiskTierHigh,
	}
	fake := &testutil.FakeScorer{Risk: 0.5}
	c := New(fake, DefaultConfig())

	decision, err := c.Decide(context.Background(), domain.EnrichedEvent{
		Event:    fixtureEvent(),
		Profile:  profile,
		Velocity: &velocity,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !decision.Fraud {
		t.Fatalf("expected streaming bonus (high velocity + unusual amount + high risk tier) to push risk over threshold")
	}
	if len(decision.Opinions) != 10 {
		t.Fatalf("expected both collaboration streams to fire independently on high-velocity and profile-present, even with no phase-1 disagreement, got %d", len(decision.Opinions))
	}
}

func TestDecideHighVelocityOnlyTriggersVelocityCollabWithoutDisagreement(t *testing.T) {
	velocity := domain.Velocity(10)
	fake := &testutil.FakeScorer{Risk: 0.3}
	c := New(fake, DefaultConfig())

	decision, err := c.Decide(context.Background(), domain.EnrichedEvent{
		Event:    fixtureEvent(),
		Velocity: &velocity,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(decision.Opinions) != 8 {
		t.Fatalf("expected 5 phase-1 + 1 consensus + 2 velocity-collab opinions on high velocity alone, got %d", len(decision.Opinions))
	}
}

func TestDecideRecoversPanicIntoTechnicalErrorDecision(t *testing.T) {
	c := New(testutil.PanicScorer{}, DefaultConfig())

	decision, err := c.Decide(context.Background(), domain.EnrichedEvent{Event: fixtureEvent()})
	if err == nil {
		t.Fatal("expected a non-nil error when the coordinator recovers from a panic")
	}
	if !errors.Is(err, domain.ErrCoordinatorFailed) {
		t.Fatalf("expected error to wrap domain.ErrCoordinatorFailed, got %v", err)
	}
	if decision.Confidence != 0.5 {
		t.Fatalf("expected technical-error decision to carry confidence 0.5, got %v", decision.Confidence)
	}
	if !decision.Fraud {
		t.Fatal("expected technical-error decision to route to human review via fraud=true")
	}
	if decision.EventID != "evt-1" {
		t.Fatalf("expected decision to still carry the event id, got %q", decision.EventID)
	}
}

func TestDecideScorerFailureStillProducesNeutralDecision(t *testing.T) {
	fake := &testutil.FakeScorer{Err: context.DeadlineExceeded}
	c := New(fake, DefaultConfig())

	decision, err := c.Decide(context.Background(), domain.EnrichedEvent{Event: fixtureEvent()})
	if err != nil {
		t.Fatalf("expected scorer failure to still produce a degraded decision without an error, got %v", err)
	}

	if decision.EventID != "evt-1" {
		t.Fatalf("expected decision to still carry the event id, got %q", decision.EventID)
	}
	for _, o := range decision.Opinions {
		if o.Risk != 0.5 {
			t.Fatalf("expected every opinion to fail over to neutral risk 0.5, got %v for %s", o.Risk, o.AnalyzerID)
		}
	}
}
