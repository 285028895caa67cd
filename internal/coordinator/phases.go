package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenticfraud/fraud-pipeline/internal/analyzer"
	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// runPool fans fns out across a semaphore-bounded pool of size poolSize and
// returns their results in call order, grounded on original_source's
// ExecutorService-backed conductParallelAnalysis (fixed-size thread pool,
// CompletableFuture.allOf join). A panic inside any fn is recovered in its
// goroutine and re-raised in the caller once every fn has returned, so
// Decide's recover sees it.
func runPool(poolSize int, fns []func() domain.Opinion) []domain.Opinion {
	out := make([]domain.Opinion, len(fns))
	sem := make(chan struct{}, poolSize)
	var wg sync.WaitGroup
	var panicOnce sync.Once
	var panicked any
	for i, fn := range fns {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fn func() domain.Opinion) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
				}
			}()
			out[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}
	return out
}

// runPhase1 implements spec.md §4.3 phase 1: all five specialists analyze
// the same enriched event concurrently.
func (c *Coordinator) runPhase1(ctx context.Context, enriched domain.EnrichedEvent) []domain.Opinion {
	fns := make([]func() domain.Opinion, len(analyzer.Panel))
	for i, a := range analyzer.Panel {
		a := a
		fns[i] = func() domain.Opinion {
			return a.Analyze(ctx, c.scorer, enriched, c.cfg.HighVelocityThreshold)
		}
	}
	return runPool(c.cfg.PoolSize, fns)
}

// disagreement is the max-min spread across phase-1 risk scores, the
// trigger condition original_source's facilitateAgentCollaboration checks
// before asking any specialist a follow-up question.
func disagreement(opinions []domain.Opinion) float64 {
	if len(opinions) == 0 {
		return 0
	}
	min, max := opinions[0].Risk, opinions[0].Risk
	for _, o := range opinions[1:] {
		if o.Risk < min {
			min = o.Risk
		}
		if o.Risk > max {
			max = o.Risk
		}
	}
	return max - min
}

// runPhase2 implements spec.md §4.3 phase 2. Three independent triggers
// govern collaboration: phase-1 disagreement exceeding
// cfg.DisagreementThreshold, high velocity, and profile presence. Any one of
// them is enough to attempt collaboration at all, but velocity-collab and
// profile-collab each fire strictly on their own condition (high velocity,
// profile present) regardless of whether disagreement also holds — a
// disagreement-only trigger with neither velocity nor profile present
// attempts collaboration but finds no stream to run.
func (c *Coordinator) runPhase2(ctx context.Context, enriched domain.EnrichedEvent, phase1 []domain.Opinion) []domain.Opinion {
	highVelocity := enriched.HasHighVelocity(c.cfg.HighVelocityThreshold)
	hasProfile := enriched.Profile != nil
	if disagreement(phase1) <= c.cfg.DisagreementThreshold && !highVelocity && !hasProfile {
		return nil
	}

	var fns []func() domain.Opinion

	if highVelocity {
		question := fmt.Sprintf(
			"Given a velocity of %d transactions in the last 5-minute window, does this pattern "+
				"indicate automated attack behavior?", int64(*enriched.Velocity),
		)
		fns = append(fns,
			func() domain.Opinion { return analyzer.Panel[1].Collaborate(ctx, c.scorer, enriched, question) }, // pattern
			func() domain.Opinion { return analyzer.Panel[4].Collaborate(ctx, c.scorer, enriched, question) }, // temporal
		)
	}

	if hasProfile {
		question := fmt.Sprintf(
			"Given the customer's profile (avg $%.2f, risk tier %s), does this amount deviation "+
				"indicate fraud?", enriched.Profile.AverageAmount, enriched.Profile.RiskTier,
		)
		fns = append(fns,
			func() domain.Opinion { return analyzer.Panel[0].Collaborate(ctx, c.scorer, enriched, question) }, // behavior
			func() domain.Opinion { return analyzer.Panel[2].Collaborate(ctx, c.scorer, enriched, question) }, // risk
		)
	}

	if len(fns) == 0 {
		return nil
	}
	return runPool(c.cfg.PoolSize, fns)
}

// consensusOpinion always runs, regardless of whether collaboration
// triggered, grounded on original_source's buildAgentConsensus call at the
// tail of synthesizeIntelligentDecision.
func (c *Coordinator) consensusOpinion(ctx context.Context, enriched domain.EnrichedEvent, phase1 []domain.Opinion) domain.Opinion {
	var summary string
	for _, o := range phase1 {
		summary += fmt.Sprintf("- %s: risk %.2f (%s)\n", o.AnalyzerID, o.Risk, o.Reasoning)
	}
	prompt := fmt.Sprintf(
		"You are building consensus across independent fraud analyst opinions for this transaction.\n\n"+
			"%s\n\nStreaming context: %s\n\nOpinions so far:\n%s\nFormat:\nRISK_SCORE: [0.0-1.0]\nREASONING: [...]\nRECOMMENDATION: [...]",
		enriched.Event.AnalysisText(), enriched.StreamingSummary(c.cfg.HighVelocityThreshold), summary,
	)
	resp, err := c.scorer.Score(ctx, prompt)
	if err != nil {
		return domain.Opinion{
			AnalyzerID:     "consensus",
			Specialization: "consensus",
			Risk:           0.5,
			Reasoning:      fmt.Sprintf("consensus scorer failure: %v", err),
			Recommendation: "manual review required",
		}
	}
	return domain.Opinion{
		AnalyzerID:     "consensus",
		Specialization: "consensus",
		RawText:        resp.RawText,
		Risk:           resp.Risk,
		Reasoning:      resp.Reasoning,
		Recommendation: resp.Recommendation,
	}
}
