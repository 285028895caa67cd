package domain

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")

	// ErrScorerUnavailable marks a transient failure of the external scoring
	// service. Analyzers convert it into a neutral opinion; it never
	// propagates past the analyzer boundary.
	ErrScorerUnavailable = errors.New("scorer unavailable")

	// ErrScorerMalformed marks a scorer response with no RISK_SCORE line and
	// no recognizable keyword class.
	ErrScorerMalformed = errors.New("scorer response malformed")

	// ErrCoordinatorFailed marks an uncaught failure in the coordinator's
	// three phases. Coordinator.Decide returns it together with a synthetic
	// technical-error Decision instead of panicking.
	ErrCoordinatorFailed = errors.New("coordinator failed")

	// ErrBusFailure marks a produce/commit failure at the bus boundary. It
	// stalls and retries the topology; it is never swallowed.
	ErrBusFailure = errors.New("bus failure")

	// ErrMalformedEvent marks an input record that failed JSON decoding. It
	// is logged and skipped at the bus adapter and never reaches the core.
	ErrMalformedEvent = errors.New("malformed event")
)
