package domain

import (
	"fmt"
	"strings"
	"time"
)

// wireTimestampLayout matches spec.md's wire format exactly: no timezone
// suffix, second precision. time.RFC3339 would round-trip a "Z" onto it,
// breaking the "JSON -> parse -> serialize yields byte-equal JSON" law.
const wireTimestampLayout = "2006-01-02T15:04:05"

// WireTime wraps time.Time so Event's timestamp field marshals and
// unmarshals using the fixed wire layout instead of RFC3339.
type WireTime struct {
	time.Time
}

func NewWireTime(t time.Time) WireTime {
	return WireTime{Time: t}
}

func (t WireTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(wireTimestampLayout) + `"`), nil
}

func (t *WireTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	parsed, err := time.Parse(wireTimestampLayout, raw)
	if err != nil {
		return fmt.Errorf("parse wire timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// RiskTier is the payer's historical risk classification.
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// Event is one card-authorization or payment-attempt record submitted for
// screening. Field names on the wire follow spec.md §6.
type Event struct {
	EventID          string            `json:"transactionId"`
	PayerID          string            `json:"customerId"`
	Amount           float64           `json:"amount"`
	Currency         string            `json:"currency"`
	MerchantID       string            `json:"merchantId"`
	MerchantCategory string            `json:"merchantCategory"`
	Location         string            `json:"location"`
	Timestamp        WireTime          `json:"timestamp"`
	Metadata         map[string]string `json:"metadata"`
}

// Validate enforces the non-empty/positive-amount invariants of spec.md §3.
func (e Event) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: transactionId is required", ErrInvalidInput)
	case e.PayerID == "":
		return fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	case e.Amount <= 0:
		return fmt.Errorf("%w: amount must be strictly positive", ErrInvalidInput)
	case e.Currency == "":
		return fmt.Errorf("%w: currency is required", ErrInvalidInput)
	case e.MerchantID == "":
		return fmt.Errorf("%w: merchantId is required", ErrInvalidInput)
	case e.MerchantCategory == "":
		return fmt.Errorf("%w: merchantCategory is required", ErrInvalidInput)
	case e.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	return nil
}

// AnalysisText renders the event the way every analyzer prompt embeds it.
func (e Event) AnalysisText() string {
	return fmt.Sprintf(
		"Transaction %s: $%.2f %s at merchant %s (%s), location %s, at %s",
		e.EventID, e.Amount, e.Currency, e.MerchantID, e.MerchantCategory,
		e.Location, e.Timestamp.Format(wireTimestampLayout),
	)
}

// Profile is the historical baseline kept per payer. Invariant: Average <=
// DailyLimit.
type Profile struct {
	PayerID           string   `json:"customerId"`
	AverageAmount     float64  `json:"averageTransactionAmount"`
	DailyLimit        float64  `json:"dailyLimit"`
	TypicalCategories []string `json:"typicalCategories"`
	PrimaryLocation   string   `json:"primaryLocation"`
	RiskTier          RiskTier `json:"riskLevel"`
}

// IsAmountUnusual reports whether amount exceeds 3x the profile's average,
// the same threshold original_source's CustomerProfile.isAmountUnusual uses.
func (p Profile) IsAmountUnusual(amount float64) bool {
	return p.AverageAmount > 0 && amount > 3*p.AverageAmount
}

// Velocity is the count of events observed for a payer in the most recent
// 5-minute tumbling window.
type Velocity int64

// IsHigh reports whether the count exceeds the configured high-velocity
// threshold (spec.md's velocity.highThreshold, default 3).
func (v Velocity) IsHigh(threshold int64) bool {
	return int64(v) > threshold
}

// EnrichedEvent is an Event paired with whatever Profile and Velocity were
// known at processing time. Both joins are left joins: either may be absent.
type EnrichedEvent struct {
	Event    Event
	Profile  *Profile
	Velocity *Velocity
}

// HasHighVelocity reports whether the velocity join produced a count above
// threshold. Absent velocity is never high.
func (e EnrichedEvent) HasHighVelocity(threshold int64) bool {
	return e.Velocity != nil && e.Velocity.IsHigh(threshold)
}

// StreamingSummary renders the enrichment context the way the coordinator's
// explanation and consensus prompt embed it.
func (e EnrichedEvent) StreamingSummary(highVelocityThreshold int64) string {
	var b strings.Builder
	if e.Velocity != nil {
		fmt.Fprintf(&b, "velocity=%d events/5min", int64(*e.Velocity))
		if e.HasHighVelocity(highVelocityThreshold) {
			b.WriteString(" (HIGH)")
		}
	} else {
		b.WriteString("velocity=unknown")
	}
	if e.Profile != nil {
		fmt.Fprintf(&b, ", profile=$%.0f avg/%s risk", e.Profile.AverageAmount, e.Profile.RiskTier)
		if e.Profile.IsAmountUnusual(e.Event.Amount) {
			b.WriteString(" (UNUSUAL AMOUNT)")
		}
	} else {
		b.WriteString(", profile=unknown")
	}
	return b.String()
}

// Opinion is one analyzer's scored response to an enriched event.
// Confidence is derived, never stored separately: the emitting analyzer has
// no axis besides risk.
type Opinion struct {
	AnalyzerID     string
	Specialization string
	RawText        string
	Risk           float64
	Reasoning      string
	Recommendation string
	ProducedAt     time.Time
}

// Confidence implements spec.md §3's invariant: confidence = min(risk, 1).
func (o Opinion) Confidence() float64 {
	return minFloat(o.Risk, 1)
}

// IndicatesFraud reports whether this single opinion leans toward fraud,
// used when computing the coordinator's agreement ratio.
func (o Opinion) IndicatesFraud() bool {
	return o.Risk > 0.6
}

// Decision is the system's single per-event outcome.
type Decision struct {
	EventID       string
	Fraud         bool
	Confidence    float64
	PrimaryReason string
	Explanation   string
	Opinions      []Opinion
	AnalyzedAt    time.Time
}

// HighConfidence and NeedsHuman implement the fixed bands from spec.md §3.
// These are definitional properties of a Decision, distinct from the
// router's own (separately configurable) thresholds in spec.md §6.
func (d Decision) HighConfidence() bool {
	return d.Confidence >= 0.8
}

func (d Decision) NeedsHuman() bool {
	return d.Confidence > 0.3 && d.Confidence < 0.7
}

// FeedbackRecord is one analyst correction consumed from analyst-feedback.
type FeedbackRecord struct {
	EventID     string    `json:"transactionId"`
	ActualFraud bool      `json:"actualFraud"`
	Feedback    string    `json:"feedback"`
	Timestamp   time.Time `json:"timestamp"`
}

// AgentCatalogEntry describes one analyzer specialization for the
// /agents/info boundary endpoint.
type AgentCatalogEntry struct {
	ID             string  `json:"id"`
	Specialization string  `json:"specialization"`
	Weight         float64 `json:"weight"`
	Focus          string  `json:"focus"`
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
