// Package testutil holds small test doubles shared across package tests
// (analyzer, coordinator, adapters/http) so each of those test suites isn't
// reinventing the same fake Scorer.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agenticfraud/fraud-pipeline/internal/domain"
	"github.com/agenticfraud/fraud-pipeline/internal/ports"
)

// FakeScorer returns a fixed risk score for every call, or fails if Err is
// set. Calls are counted so tests can assert fan-out width.
type FakeScorer struct {
	Risk float64
	Err  error

	calls int64
	mu    sync.Mutex
	seen  []string
}

func (f *FakeScorer) Score(_ context.Context, prompt string) (ports.ScoredResponse, error) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	f.seen = append(f.seen, prompt)
	f.mu.Unlock()

	if f.Err != nil {
		return ports.ScoredResponse{}, fmt.Errorf("%w: %v", domain.ErrScorerUnavailable, f.Err)
	}
	return ports.ScoredResponse{
		RawText:        fmt.Sprintf("RISK_SCORE: %.2f\nREASONING: fake scorer response\nRECOMMENDATION: proceed", f.Risk),
		Risk:           f.Risk,
		Reasoning:      "fake scorer response",
		Recommendation: "proceed",
	}, nil
}

func (f *FakeScorer) Calls() int64 {
	return atomic.LoadInt64(&f.calls)
}

// PanicScorer panics on every call, for exercising the coordinator's
// recover-into-technical-error-decision path rather than its ordinary
// error-returning one.
type PanicScorer struct{}

func (PanicScorer) Score(context.Context, string) (ports.ScoredResponse, error) {
	panic("testutil: PanicScorer always panics")
}

// PromptFakeScorer returns the risk score of the first ByFocus key found
// (case-insensitively) in the prompt text, or Default when none matches,
// useful when a test wants different analyzers to disagree.
type PromptFakeScorer struct {
	Default float64
	ByFocus map[string]float64
}

func (f *PromptFakeScorer) Score(_ context.Context, prompt string) (ports.ScoredResponse, error) {
	risk := f.Default
	for needle, r := range f.ByFocus {
		if containsFold(prompt, needle) {
			risk = r
			break
		}
	}
	return ports.ScoredResponse{
		RawText:        fmt.Sprintf("RISK_SCORE: %.2f\nREASONING: matched %s\nRECOMMENDATION: review", risk, prompt[:min(20, len(prompt))]),
		Risk:           risk,
		Reasoning:      "matched fake response",
		Recommendation: "review",
	}, nil
}

func containsFold(haystack, needle string) bool {
	return len(needle) <= len(haystack) && indexFold(haystack, needle) >= 0
}

func indexFold(haystack, needle string) int {
	hl, nl := len(haystack), len(needle)
	for i := 0; i+nl <= hl; i++ {
		if equalFold(haystack[i:i+nl], needle) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
