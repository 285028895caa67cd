package ports

import "context"

// ScoredResponse is a Scorer's parsed output: the raw text plus the three
// fields extracted from it per spec.md §4.1's fixed parsing rules.
type ScoredResponse struct {
	RawText        string
	Risk           float64
	Reasoning      string
	Recommendation string
}

// Scorer is the opaque external text-scoring capability consumed by
// analyzers. Implementations must fail with domain.ErrScorerUnavailable on
// any failure of the underlying service — callers treat that as a signal to
// emit a neutral opinion, never propagate it further.
type Scorer interface {
	Score(ctx context.Context, prompt string) (ScoredResponse, error)
}
