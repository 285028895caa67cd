// Package analyzer implements the five fraud-investigation specializations
// as variants of one closed set (spec.md §9's design note), replacing the
// inheritance hierarchy of original_source/agents/AbstractFraudAgent.java.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

// promptBuilder renders an analyzer's specialist prompt from the enriched
// event the way original_source's per-agent analyze() methods do.
type promptBuilder func(domain.EnrichedEvent, int64) string

// collabPromptBuilder renders a collaboration prompt that embeds the
// coordinator's question alongside the event and the analyzer's focus.
type collabPromptBuilder func(domain.EnrichedEvent, string) string

// Analyzer is one specialization. All five share this shape; there is no
// per-specialization subtype.
type Analyzer struct {
	ID             string
	Specialization string
	Weight         float64
	Focus          string
	buildPrompt    promptBuilder
	buildCollab    collabPromptBuilder
}

// Panel is the closed set of five specialists, in the order spec.md §4.2
// lists them.
var Panel = [5]Analyzer{
	behaviorAnalyzer,
	patternAnalyzer,
	riskAnalyzer,
	geographicAnalyzer,
	temporalAnalyzer,
}

// Catalog renders the panel as the static /agents/info boundary response.
func Catalog() []domain.AgentCatalogEntry {
	out := make([]domain.AgentCatalogEntry, 0, len(Panel))
	for _, a := range Panel {
		out = append(out, domain.AgentCatalogEntry{
			ID:             a.ID,
			Specialization: a.Specialization,
			Weight:         a.Weight,
			Focus:          a.Focus,
		})
	}
	return out
}

// Analyze builds the specialist prompt, invokes the Scorer, and returns an
// Opinion tagged with this analyzer's identity. Scorer failures are
// converted to a neutral opinion per spec.md §4.1/§7 — they never
// propagate.
func (a Analyzer) Analyze(ctx context.Context, s ports.Scorer, enriched domain.EnrichedEvent, highVelocityThreshold int64) domain.Opinion {
	prompt := a.buildPrompt(enriched, highVelocityThreshold)
	return a.score(ctx, s, a.ID, prompt)
}

// Collaborate poses question to the analyzer in the context of the
// enriched event. The resulting Opinion's id is suffixed "-collab" per
// spec.md §4.2.
func (a Analyzer) Collaborate(ctx context.Context, s ports.Scorer, enriched domain.EnrichedEvent, question string) domain.Opinion {
	prompt := a.buildCollab(enriched, question)
	return a.score(ctx, s, a.ID+"-collab", prompt)
}

func (a Analyzer) score(ctx context.Context, s ports.Scorer, opinionID, prompt string) domain.Opinion {
	now := time.Now().UTC()
	resp, err := s.Score(ctx, prompt)
	if err != nil {
		return a.neutralOpinion(opinionID, err, now)
	}
	return domain.Opinion{
		AnalyzerID:     opinionID,
		Specialization: a.Specialization,
		RawText:        resp.RawText,
		Risk:           resp.Risk,
		Reasoning:      resp.Reasoning,
		Recommendation: resp.Recommendation,
		ProducedAt:     now,
	}
}

// neutralOpinion implements spec.md §4.2's failure policy: risk 0.5,
// reasoning describing the failure, recommendation forcing manual review.
func (a Analyzer) neutralOpinion(opinionID string, err error, at time.Time) domain.Opinion {
	reason := "scorer unavailable"
	if errors.Is(err, domain.ErrScorerUnavailable) {
		reason = fmt.Sprintf("scorer unavailable: %v", err)
	} else if err != nil {
		reason = fmt.Sprintf("scorer failure: %v", err)
	}
	return domain.Opinion{
		AnalyzerID:     opinionID,
		Specialization: a.Specialization,
		RawText:        "",
		Risk:           0.5,
		Reasoning:      reason,
		Recommendation: "manual review required",
		ProducedAt:     at,
	}
}
