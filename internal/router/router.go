// Package router implements spec.md §4.6's three ordered predicates,
// building envelopes field-for-field the way original_source's
// createFraudAlert/createReviewCase/createApproval helpers do.
package router

import (
	"math"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

const (
	TopicFraudAlerts = "fraud-alerts"
	TopicHumanReview = "human-review"
	TopicApproved    = "approved-transactions"
)

// FraudAlertEnvelope is published to fraud-alerts.
type FraudAlertEnvelope struct {
	Type              string    `json:"type"`
	EventID           string    `json:"transactionId"`
	ConfidencePercent int       `json:"confidencePercent"`
	PrimaryReason     string    `json:"primaryReason"`
	OpinionCount      int       `json:"opinionCount"`
	Explanation       string    `json:"explanation"`
	Priority          string    `json:"priority"`
	Timestamp         time.Time `json:"timestamp"`
}

// ReviewCaseEnvelope is published to human-review.
type ReviewCaseEnvelope struct {
	Type      string          `json:"type"`
	EventID   string          `json:"transactionId"`
	Status    string          `json:"status"`
	Opinions  []domain.Opinion `json:"opinions"`
	Timestamp time.Time       `json:"timestamp"`
}

// ApprovalEnvelope is published to approved-transactions.
type ApprovalEnvelope struct {
	Type         string    `json:"type"`
	EventID      string    `json:"transactionId"`
	Status       string    `json:"status"`
	OpinionCount int       `json:"opinionCount"`
	Timestamp    time.Time `json:"timestamp"`
}

// Config holds the router's confidence bands (spec.md §6).
type Config struct {
	FraudAlertThreshold float64
	NeedsHumanLower     float64
	NeedsHumanUpper     float64
}

func DefaultConfig() Config {
	return Config{FraudAlertThreshold: 0.8, NeedsHumanLower: 0.3, NeedsHumanUpper: 0.7}
}

func needsHuman(cfg Config, d domain.Decision) bool {
	return d.Confidence > cfg.NeedsHumanLower && d.Confidence < cfg.NeedsHumanUpper
}

// Route applies the three ordered predicates and returns the destination
// topic alongside the envelope to publish there.
func Route(cfg Config, d domain.Decision) (topic string, envelope any) {
	switch {
	case d.Fraud && d.Confidence > cfg.FraudAlertThreshold:
		return TopicFraudAlerts, fraudAlertEnvelope(cfg, d)
	case d.Fraud || needsHuman(cfg, d):
		return TopicHumanReview, reviewCaseEnvelope(d)
	default:
		return TopicApproved, approvalEnvelope(d)
	}
}

func fraudAlertEnvelope(cfg Config, d domain.Decision) FraudAlertEnvelope {
	priority := "MEDIUM"
	if d.Confidence >= cfg.FraudAlertThreshold {
		priority = "HIGH"
	}
	return FraudAlertEnvelope{
		Type:              "AI_FRAUD_ALERT",
		EventID:           d.EventID,
		ConfidencePercent: int(math.Round(d.Confidence * 100)),
		PrimaryReason:     d.PrimaryReason,
		OpinionCount:      len(d.Opinions),
		Explanation:       d.Explanation,
		Priority:          priority,
		Timestamp:         d.AnalyzedAt,
	}
}

func reviewCaseEnvelope(d domain.Decision) ReviewCaseEnvelope {
	return ReviewCaseEnvelope{
		Type:      "AI_REVIEW_CASE",
		EventID:   d.EventID,
		Status:    "PENDING_HUMAN_REVIEW",
		Opinions:  d.Opinions,
		Timestamp: d.AnalyzedAt,
	}
}

func approvalEnvelope(d domain.Decision) ApprovalEnvelope {
	return ApprovalEnvelope{
		Type:         "AI_APPROVAL",
		EventID:      d.EventID,
		Status:       "APPROVED_BY_AI",
		OpinionCount: len(d.Opinions),
		Timestamp:    d.AnalyzedAt,
	}
}
