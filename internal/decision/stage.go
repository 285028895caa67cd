// Package decision is the thin per-event glue between the enrichment
// topology's output and the coordinator's synthesis, grounded on the
// teacher's application/service_profile.go "one operation per concern"
// style: no branching here belongs to this package, it all lives in
// internal/coordinator.
package decision

import (
	"context"

	"github.com/agenticfraud/fraud-pipeline/internal/coordinator"
	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// Stage wraps a Coordinator so the stream-processing entrypoint has a
// single named dependency to wire, matching spec.md §4.5's "decision
// stage" component boundary.
type Stage struct {
	coordinator *coordinator.Coordinator
}

func New(c *coordinator.Coordinator) *Stage {
	return &Stage{coordinator: c}
}

// Handle produces the Decision for one enriched event. coordinator.Decide
// already absorbs every failure into a degraded Decision, so this never
// loses a Decision to report; the error it passes through only tells the
// caller whether that Decision is the synthetic technical-error one, for
// callers (the HTTP analyze endpoint) that have a status code to report it
// with. The stream pipeline ignores it and routes on the Decision as-is.
func (s *Stage) Handle(ctx context.Context, enriched domain.EnrichedEvent) (domain.Decision, error) {
	return s.coordinator.Decide(ctx, enriched)
}
