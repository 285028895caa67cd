// Package coordinator implements the three-phase fan-out/refine/synthesize
// protocol of spec.md §4.3, grounded on
// original_source/services/AgentCoordinator.java's
// investigateTransaction/conductParallelAnalysis/facilitateAgentCollaboration/
// synthesizeIntelligentDecision sequence.
//
// Per spec.md §9's cyclic-coupling note, Coordinator is kept a pure function
// of (EnrichedEvent, Scorer): it depends on the analyzer panel and the
// injected Scorer, never on the bus or a state store, so it can be tested
// without either.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

// Config holds the coordinator's tunable thresholds (spec.md §6).
type Config struct {
	// PoolSize bounds the per-decision fan-out (spec.md §5's "small
	// bounded worker pool (sized 5)"). Each runPool call gets its own
	// semaphore of this size; concurrent decision passes do not share a
	// pool, so total in-flight Scorer calls are not bounded by it.
	PoolSize int

	// HighVelocityThreshold is velocity.highThreshold (default 3).
	HighVelocityThreshold int64

	// FraudThreshold is risk.fraudThreshold (default 0.6).
	FraudThreshold float64

	// DisagreementThreshold is the max-min phase-1 risk spread that
	// triggers collaboration (fixed at 0.4 by spec.md §4.3).
	DisagreementThreshold float64
}

// DefaultConfig matches spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		PoolSize:              5,
		HighVelocityThreshold: 3,
		FraudThreshold:        0.6,
		DisagreementThreshold: 0.4,
	}
}

// Coordinator orchestrates one decision pass. It holds no per-event state;
// a single instance is safe for concurrent use across decision passes
// (spec.md §5: "no coordination across decision passes").
type Coordinator struct {
	scorer ports.Scorer
	cfg    Config
}

func New(scorer ports.Scorer, cfg Config) *Coordinator {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultConfig().PoolSize
	}
	if cfg.HighVelocityThreshold <= 0 {
		cfg.HighVelocityThreshold = DefaultConfig().HighVelocityThreshold
	}
	if cfg.FraudThreshold <= 0 {
		cfg.FraudThreshold = DefaultConfig().FraudThreshold
	}
	if cfg.DisagreementThreshold <= 0 {
		cfg.DisagreementThreshold = DefaultConfig().DisagreementThreshold
	}
	return &Coordinator{scorer: scorer, cfg: cfg}
}

// Decide runs the full three-phase protocol. On any uncaught failure it
// returns the synthetic technical-error Decision of spec.md §4.3's final
// paragraph alongside domain.ErrCoordinatorFailed, instead of panicking —
// callers always get a Decision, but a non-nil error distinguishes the
// degraded path for callers that have somewhere to report it (the HTTP
// analyze endpoint replies 500; the stream pipeline has no status to report
// and routes on the Decision's fields exactly as it would otherwise, since
// the synthetic Decision already carries fraud=true for the router to send
// to human-review).
func (c *Coordinator) Decide(ctx context.Context, enriched domain.EnrichedEvent) (decision domain.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = technicalErrorDecision(enriched.Event.EventID)
			err = fmt.Errorf("%w: %v", domain.ErrCoordinatorFailed, r)
		}
	}()

	phase1 := c.runPhase1(ctx, enriched)
	collab := c.runPhase2(ctx, enriched, phase1)
	consensus := c.consensusOpinion(ctx, enriched, phase1)

	all := make([]domain.Opinion, 0, len(phase1)+len(collab)+1)
	all = append(all, phase1...)
	all = append(all, collab...)
	all = append(all, consensus)

	return c.synthesize(enriched, all), nil
}

func technicalErrorDecision(eventID string) domain.Decision {
	return domain.Decision{
		EventID:       eventID,
		Fraud:         true,
		Confidence:    0.5,
		PrimaryReason: "Technical error during analysis",
		Explanation:   "Error occurred during analysis. Manual review required.",
		Opinions:      nil,
		AnalyzedAt:    time.Now().UTC(),
	}
}
