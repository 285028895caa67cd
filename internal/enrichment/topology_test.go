package enrichment

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
)

type memVelocityStore struct {
	mu      sync.Mutex
	windows map[string]int64
}

func newMemVelocityStore() *memVelocityStore {
	return &memVelocityStore{windows: map[string]int64{}}
}

func (m *memVelocityStore) IncrementWindow(_ context.Context, payerID string, windowStart time.Time, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := payerID + "|" + windowStart.String()
	m.windows[key]++
	return m.windows[key], nil
}

func (m *memVelocityStore) CurrentVelocity(_ context.Context, payerID string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, count := range m.windows {
		if len(key) > len(payerID) && key[:len(payerID)] == payerID {
			return count, true, nil
		}
	}
	return 0, false, nil
}

type memProfileTable struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func newMemProfileTable() *memProfileTable {
	return &memProfileTable{profiles: map[string]domain.Profile{}}
}

func (m *memProfileTable) Upsert(_ context.Context, p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.PayerID] = p
	return nil
}

func (m *memProfileTable) Get(_ context.Context, payerID string) (domain.Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[payerID]
	return p, ok, nil
}

func testEvent(payerID string, at time.Time) domain.Event {
	return domain.Event{
		EventID:          "evt-" + payerID + "-" + at.String(),
		PayerID:          payerID,
		Amount:           10,
		Currency:         "USD",
		MerchantID:       "M-1",
		MerchantCategory: "ONLINE",
		Location:         "here",
		Timestamp:        domain.NewWireTime(at),
	}
}

func TestJoinAndEmitAssignsKInclusiveVelocity(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	velocity := newMemVelocityStore()
	profiles := newMemProfileTable()
	topo := New(logger, velocity, profiles, Config{Workers: 1, WindowSize: 5 * time.Minute, HighVelocityThreshold: 3})

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		topo.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		topo.Submit(ctx, testEvent("CUST-1", base))
	}

	var counts []int64
	for i := 0; i < 3; i++ {
		enriched := <-topo.Out()
		if enriched.Velocity == nil {
			t.Fatalf("expected velocity to be populated")
		}
		counts = append(counts, int64(*enriched.Velocity))
	}
	cancel()
	<-done

	for i, c := range counts {
		if c != int64(i+1) {
			t.Fatalf("expected the %d-th event to observe count %d (k-inclusive), got %d", i+1, i+1, c)
		}
	}
}

func TestProfileSnapshotIsVisibleToLaterJoin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	velocity := newMemVelocityStore()
	profiles := newMemProfileTable()
	topo := New(logger, velocity, profiles, Config{Workers: 1, WindowSize: 5 * time.Minute, HighVelocityThreshold: 3})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		topo.Run(ctx)
		close(done)
	}()

	topo.SubmitProfile(ctx, domain.Profile{PayerID: "CUST-2", AverageAmount: 20, DailyLimit: 200})
	topo.Submit(ctx, testEvent("CUST-2", time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)))

	enriched := <-topo.Out()
	cancel()
	<-done

	if enriched.Profile == nil {
		t.Fatalf("expected profile snapshot submitted before the event to be visible to its join")
	}
	if enriched.Profile.AverageAmount != 20 {
		t.Fatalf("expected joined profile average 20, got %v", enriched.Profile.AverageAmount)
	}
}
