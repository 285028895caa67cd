package analyzer

import (
	"fmt"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// Weights match spec.md §4.2's table exactly; they are the coordinator's
// per-opinion weights in the consensus mean.
const (
	WeightBehavior   = 1.2
	WeightPattern    = 1.3
	WeightRisk       = 1.1
	WeightGeographic = 1.0
	WeightTemporal   = 1.0

	// WeightCollaboration is applied to every collaboration and consensus
	// opinion (spec.md §4.3 phase 3, step 2).
	WeightCollaboration = 0.8
)

var behaviorAnalyzer = Analyzer{
	ID:             "behavior",
	Specialization: "customer-behavior",
	Weight:         WeightBehavior,
	Focus:          "velocity vs. baseline spending, timing anomalies",
	buildPrompt: func(e domain.EnrichedEvent, highVelocityThreshold int64) string {
		return fmt.Sprintf(
			"As a customer-behavior analyst, assess this transaction for behavioral anomalies.\n\n"+
				"%s\n\nStreaming context: %s\n\n"+
				"Focus on how velocity and spending baseline affect this customer's behavior.\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			e.Event.AnalysisText(), e.StreamingSummary(highVelocityThreshold),
		)
	},
	buildCollab: func(e domain.EnrichedEvent, question string) string {
		return fmt.Sprintf(
			"COLLABORATION QUESTION: %s\n\nAs a customer-behavior analyst, respond considering:\n%s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			question, e.Event.AnalysisText(),
		)
	},
}

var patternAnalyzer = Analyzer{
	ID:             "pattern",
	Specialization: "attack-patterns",
	Weight:         WeightPattern,
	Focus:          "card-testing, bot, credential-stuffing signatures",
	buildPrompt: func(e domain.EnrichedEvent, highVelocityThreshold int64) string {
		return fmt.Sprintf(
			"As an attack-pattern detector, assess this transaction for card-testing, bot, or "+
				"credential-stuffing signatures.\n\n%s\n\nStreaming context: %s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			e.Event.AnalysisText(), e.StreamingSummary(highVelocityThreshold),
		)
	},
	buildCollab: func(e domain.EnrichedEvent, question string) string {
		return fmt.Sprintf(
			"COLLABORATION QUESTION: %s\n\nAs an attack-pattern detector, use the velocity context to "+
				"identify automated attacks:\n%s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			question, e.Event.AnalysisText(),
		)
	},
}

var riskAnalyzer = Analyzer{
	ID:             "risk",
	Specialization: "financial-risk",
	Weight:         WeightRisk,
	Focus:          "amount deviation vs. profile, merchant risk tier",
	buildPrompt: func(e domain.EnrichedEvent, highVelocityThreshold int64) string {
		return fmt.Sprintf(
			"As a financial-risk assessor, assess this transaction against the customer's baseline.\n\n"+
				"%s\n\nStreaming context: %s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			e.Event.AnalysisText(), e.StreamingSummary(highVelocityThreshold),
		)
	},
	buildCollab: func(e domain.EnrichedEvent, question string) string {
		return fmt.Sprintf(
			"COLLABORATION QUESTION: %s\n\nAs a financial-risk assessor, use the customer profile data "+
				"from streaming joins to respond:\n%s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			question, e.Event.AnalysisText(),
		)
	},
}

var geographicAnalyzer = Analyzer{
	ID:             "geographic",
	Specialization: "location-risk",
	Weight:         WeightGeographic,
	Focus:          "baseline location vs. event, geographic impossibility under high velocity",
	buildPrompt: func(e domain.EnrichedEvent, highVelocityThreshold int64) string {
		return fmt.Sprintf(
			"As a location-risk analyst, assess this transaction's location against the customer's "+
				"baseline and against geographic impossibility under high velocity.\n\n%s\n\n"+
				"Streaming context: %s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			e.Event.AnalysisText(), e.StreamingSummary(highVelocityThreshold),
		)
	},
	buildCollab: func(e domain.EnrichedEvent, question string) string {
		return fmt.Sprintf(
			"COLLABORATION QUESTION: %s\n\nAs a location-risk analyst, respond considering:\n%s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			question, e.Event.AnalysisText(),
		)
	},
}

var temporalAnalyzer = Analyzer{
	ID:             "temporal",
	Specialization: "timing-patterns",
	Weight:         WeightTemporal,
	Focus:          "off-hours, sub-second intervals, regularity indicative of scripting",
	buildPrompt: func(e domain.EnrichedEvent, highVelocityThreshold int64) string {
		return fmt.Sprintf(
			"As a timing-pattern analyst, assess this transaction for off-hours activity, sub-second "+
				"intervals, or regularity indicative of scripting.\n\n%s\n\nStreaming context: %s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			e.Event.AnalysisText(), e.StreamingSummary(highVelocityThreshold),
		)
	},
	buildCollab: func(e domain.EnrichedEvent, question string) string {
		return fmt.Sprintf(
			"COLLABORATION QUESTION: %s\n\nAs a timing-pattern analyst, does this align with the "+
				"patterns you found?\n%s\n\n"+
				"Format:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
			question, e.Event.AnalysisText(),
		)
	},
}

// WeightFor returns the consensus weight for an opinion id, falling back to
// WeightCollaboration for collaboration and consensus opinions (anything
// not matching a phase-1 analyzer id).
func WeightFor(analyzerID string) float64 {
	for _, a := range Panel {
		if a.ID == analyzerID {
			return a.Weight
		}
	}
	return WeightCollaboration
}
