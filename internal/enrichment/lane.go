package enrichment

import (
	"context"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

// runLane drains one payer-hashed lane until ctx is cancelled; items still
// buffered in the lane at that point are not processed. A profile snapshot updates the table in place; an event
// performs the velocity increment and both left-joins before publishing
// onto the shared output channel.
func (t *Topology) runLane(ctx context.Context, lane int, items chan workItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-items:
			if item.profile != nil {
				t.applyProfileSnapshot(ctx, lane, *item.profile)
				continue
			}
			t.joinAndEmit(ctx, lane, *item.event)
		}
	}
}

func (t *Topology) applyProfileSnapshot(ctx context.Context, lane int, p domain.Profile) {
	if err := t.profiles.Upsert(ctx, p); err != nil {
		t.logger.ErrorContext(ctx, "profile upsert failed",
			"module", "enrichment",
			"layer", "adapter",
			"operation", "upsert_profile",
			"outcome", "failure",
			"lane", lane,
			"payer_id", p.PayerID,
			"error", err,
		)
	}
}

// joinAndEmit performs spec.md §9's k-inclusive velocity increment before
// either left-join, so the triggering event always observes its own
// contribution to the window count.
func (t *Topology) joinAndEmit(ctx context.Context, lane int, e domain.Event) {
	enriched := domain.EnrichedEvent{Event: e}

	windowStart := e.Timestamp.Time.Truncate(t.cfg.WindowSize)
	count, err := t.velocity.IncrementWindow(ctx, e.PayerID, windowStart, t.cfg.WindowSize)
	if err != nil {
		t.logger.ErrorContext(ctx, "velocity increment failed",
			"module", "enrichment",
			"layer", "adapter",
			"operation", "increment_window",
			"outcome", "failure",
			"lane", lane,
			"payer_id", e.PayerID,
			"error", err,
		)
	} else {
		v := domain.Velocity(count)
		enriched.Velocity = &v
	}

	if profile, ok, err := t.profiles.Get(ctx, e.PayerID); err != nil {
		t.logger.ErrorContext(ctx, "profile lookup failed",
			"module", "enrichment",
			"layer", "adapter",
			"operation", "get_profile",
			"outcome", "failure",
			"lane", lane,
			"payer_id", e.PayerID,
			"error", err,
		)
	} else if ok {
		enriched.Profile = &profile
	}

	select {
	case t.out <- enriched:
	case <-ctx.Done():
	}
}
