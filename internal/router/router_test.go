package router

import (
	"testing"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

func TestRouteFraudAboveThresholdGoesToFraudAlerts(t *testing.T) {
	topic, envelope := Route(DefaultConfig(), domain.Decision{EventID: "e1", Fraud: true, Confidence: 0.95})
	if topic != TopicFraudAlerts {
		t.Fatalf("expected fraud-alerts, got %s", topic)
	}
	alert := envelope.(FraudAlertEnvelope)
	if alert.Priority != "HIGH" || alert.ConfidencePercent != 95 {
		t.Fatalf("unexpected envelope: %+v", alert)
	}
}

func TestRouteFraudAtLowerConfidenceGoesToHumanReview(t *testing.T) {
	topic, envelope := Route(DefaultConfig(), domain.Decision{EventID: "e2", Fraud: true, Confidence: 0.75})
	if topic != TopicHumanReview {
		t.Fatalf("expected human-review for fraud at 0.75 confidence, got %s", topic)
	}
	if _, ok := envelope.(ReviewCaseEnvelope); !ok {
		t.Fatalf("expected ReviewCaseEnvelope, got %T", envelope)
	}
}

func TestRouteNonFraudInUncertainBandGoesToHumanReview(t *testing.T) {
	topic, _ := Route(DefaultConfig(), domain.Decision{EventID: "e3", Fraud: false, Confidence: 0.5})
	if topic != TopicHumanReview {
		t.Fatalf("expected human-review for uncertain non-fraud, got %s", topic)
	}
}

func TestRouteConfidentNonFraudGoesToApproved(t *testing.T) {
	topic, envelope := Route(DefaultConfig(), domain.Decision{EventID: "e4", Fraud: false, Confidence: 0.9, Opinions: make([]domain.Opinion, 6)})
	if topic != TopicApproved {
		t.Fatalf("expected approved, got %s", topic)
	}
	approval := envelope.(ApprovalEnvelope)
	if approval.OpinionCount != 6 {
		t.Fatalf("expected opinion count 6, got %d", approval.OpinionCount)
	}
}
