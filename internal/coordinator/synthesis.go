package coordinator

import (
	"fmt"
	"strings"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/analyzer"
	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// synthesize implements spec.md §4.3 phase 3: weighted mean of every
// opinion produced in phases 1-2, a streaming-context bonus, the fraud
// threshold, a confidence score, and the human-readable explanation.
func (c *Coordinator) synthesize(enriched domain.EnrichedEvent, opinions []domain.Opinion) domain.Decision {
	base := weightedMean(opinions)
	bonus := c.streamingBonus(enriched)
	finalRisk := minFloat(base+bonus, 1)
	fraud := finalRisk >= c.cfg.FraudThreshold

	confidence := c.confidence(enriched, opinions, fraud)

	return domain.Decision{
		EventID:       enriched.Event.EventID,
		Fraud:         fraud,
		Confidence:    confidence,
		PrimaryReason: primaryReason(opinions, fraud),
		Explanation:   c.explanation(enriched, opinions, finalRisk, fraud),
		Opinions:      opinions,
		AnalyzedAt:    time.Now().UTC(),
	}
}

func weightedMean(opinions []domain.Opinion) float64 {
	var weighted, weights float64
	for _, o := range opinions {
		w := analyzer.WeightFor(o.AnalyzerID)
		weighted += w * o.Risk
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return weighted / weights
}

// streamingBonus implements spec.md §4.3 phase 3 step 3: the risk nudges
// contributed by the streaming joins themselves, independent of what any
// analyzer said.
func (c *Coordinator) streamingBonus(enriched domain.EnrichedEvent) float64 {
	var bonus float64
	if enriched.HasHighVelocity(c.cfg.HighVelocityThreshold) {
		bonus += 0.25
	}
	if enriched.Profile != nil {
		if enriched.Profile.IsAmountUnusual(enriched.Event.Amount) {
			bonus += 0.20
		}
		if enriched.Profile.RiskTier == domain.RiskTierHigh {
			bonus += 0.10
		}
	}
	return bonus
}

// confidence implements spec.md §4.3 phase 3 step 4: an agreement-ratio
// band, nudged up when the streaming joins corroborate the verdict.
func (c *Coordinator) confidence(enriched domain.EnrichedEvent, opinions []domain.Opinion, fraud bool) float64 {
	if len(opinions) == 0 {
		return 0.5
	}
	var agree int
	for _, o := range opinions {
		if o.IndicatesFraud() == fraud {
			agree++
		}
	}
	ratio := float64(agree) / float64(len(opinions))

	var band float64
	switch {
	case ratio >= 0.8:
		band = 0.9
	case ratio >= 0.6:
		band = 0.7
	case ratio >= 0.4:
		band = 0.5
	default:
		band = 0.3
	}

	if enriched.HasHighVelocity(c.cfg.HighVelocityThreshold) {
		band += 0.1
	}
	if enriched.Profile != nil {
		band += 0.1
	}
	return minFloat(band, 1)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// primaryReason picks the single most informative line for the decision's
// headline, grounded on original_source's synthesizeIntelligentDecision
// "primary reason" derivation from the highest-weighted contributing
// opinion.
func primaryReason(opinions []domain.Opinion, fraud bool) string {
	if !fraud {
		return "No significant fraud indicators detected"
	}
	var top domain.Opinion
	var topWeight float64
	for _, o := range opinions {
		if !o.IndicatesFraud() {
			continue
		}
		w := analyzer.WeightFor(o.AnalyzerID)
		if w >= topWeight {
			topWeight = w
			top = o
		}
	}
	if top.AnalyzerID == "" {
		return "Elevated aggregate risk across analyst opinions"
	}
	return fmt.Sprintf("Elevated risk from %s analysis: %s", top.AnalyzerID, truncateReason(top.Reasoning))
}

func truncateReason(s string) string {
	const max = 160
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// explanation implements spec.md §4.3 phase 3 step 5: streaming context,
// one bullet per opinion, and the final verdict line.
func (c *Coordinator) explanation(enriched domain.EnrichedEvent, opinions []domain.Opinion, finalRisk float64, fraud bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Streaming context: %s\n\n", enriched.StreamingSummary(c.cfg.HighVelocityThreshold))
	b.WriteString("Analyst opinions:\n")
	for _, o := range opinions {
		fmt.Fprintf(&b, "- %s (%s): risk %.2f - %s\n", o.AnalyzerID, o.Specialization, o.Risk, o.Reasoning)
	}
	verdict := "not fraud"
	if fraud {
		verdict = "fraud"
	}
	fmt.Fprintf(&b, "\nFinal weighted risk: %.2f (%s)\n", finalRisk, verdict)
	b.WriteString("Intelligence sources: ")
	ids := make([]string, 0, len(opinions))
	for _, o := range opinions {
		ids = append(ids, o.AnalyzerID)
	}
	b.WriteString(strings.Join(ids, ", "))
	return b.String()
}
