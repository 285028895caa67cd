// Package enrichment expresses the KStream/KTable join topology of
// original_source/streaming/FraudStreams.java as an explicit per-payer
// worker pump, grounded on the teacher's
// internal/adapters/events/consumer_worker.go polling-loop shape. Go has no
// Kafka Streams equivalent, so ordering-per-key is obtained by hashing
// payerID onto a fixed worker set instead of relying on a partitioned bus.
package enrichment

import (
	"context"
	"hash/fnv"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

// Config holds the topology's tunables (spec.md §6's velocity.window,
// velocity.highThreshold).
type Config struct {
	Workers               int
	WindowSize            time.Duration
	HighVelocityThreshold int64
}

func DefaultConfig() Config {
	return Config{
		Workers:               runtime.GOMAXPROCS(0),
		WindowSize:            5 * time.Minute,
		HighVelocityThreshold: 3,
	}
}

type workItem struct {
	event   *domain.Event
	profile *domain.Profile
}

// Topology owns the velocity/profile joins and the output channel of
// EnrichedEvents. One per process; Submit and SubmitProfile are safe for
// concurrent use.
type Topology struct {
	logger   *slog.Logger
	velocity ports.VelocityStore
	profiles ports.ProfileTable
	cfg      Config

	lanes []chan workItem
	out   chan domain.EnrichedEvent
}

func New(logger *slog.Logger, velocity ports.VelocityStore, profiles ports.ProfileTable, cfg Config) *Topology {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	if cfg.HighVelocityThreshold <= 0 {
		cfg.HighVelocityThreshold = DefaultConfig().HighVelocityThreshold
	}
	t := &Topology{
		logger:   logger,
		velocity: velocity,
		profiles: profiles,
		cfg:      cfg,
		lanes:    make([]chan workItem, cfg.Workers),
		out:      make(chan domain.EnrichedEvent, cfg.Workers*8),
	}
	for i := range t.lanes {
		t.lanes[i] = make(chan workItem, 64)
	}
	return t
}

// Run starts one goroutine per lane. It blocks until ctx is cancelled, waits
// for every lane goroutine to return, then closes Out and returns.
func (t *Topology) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i, lane := range t.lanes {
		wg.Add(1)
		go func(i int, lane chan workItem) {
			defer wg.Done()
			t.runLane(ctx, i, lane)
		}(i, lane)
	}
	wg.Wait()
	close(t.out)
}

// Out is the enriched-event stream the decision stage consumes.
func (t *Topology) Out() <-chan domain.EnrichedEvent {
	return t.out
}

// Submit hands a raw event to its payer's lane, blocking only on that
// lane's (small) buffer, never on any other payer's backlog.
func (t *Topology) Submit(ctx context.Context, e domain.Event) {
	lane := t.lanes[laneFor(e.PayerID, len(t.lanes))]
	select {
	case lane <- workItem{event: &e}:
	case <-ctx.Done():
	}
}

// SubmitProfile hands a profile snapshot to the same lane its payer's
// events use, so the Upsert is ordered relative to any in-flight join for
// that payer the way a Kafka Streams KTable update would be.
func (t *Topology) SubmitProfile(ctx context.Context, p domain.Profile) {
	lane := t.lanes[laneFor(p.PayerID, len(t.lanes))]
	select {
	case lane <- workItem{profile: &p}:
	case <-ctx.Done():
	}
}

func laneFor(payerID string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(payerID))
	return int(h.Sum32()) % n
}
