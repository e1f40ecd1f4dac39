package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the computation layers. These are returned, never
// panicked, and are matched with errors.Is at the API boundary.
var (
	// ErrInvalidInput means a computation was handed input it cannot work
	// with (an empty price series, a zero-sized drawing surface).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the server found no qualifying spread, or a claim id
	// does not exist. Rendered as an empty state, not a failure.
	ErrNotFound = errors.New("not found")
)

// ResolutionError reports that no valid ticker symbol could be determined.
// Candidate carries the last value tried, for diagnosis.
type ResolutionError struct {
	Candidate string
}

func (e *ResolutionError) Error() string {
	if e.Candidate == "" {
		return "ticker resolution failed: no candidate found"
	}
	return fmt.Sprintf("ticker resolution failed: candidate %q is not a valid symbol", e.Candidate)
}

// FetchError reports a failed fetch from an upstream collaborator. It keeps
// the ticker and HTTP status so user-visible failures can name their source.
type FetchError struct {
	Ticker string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: upstream status %d", e.Ticker, e.Status)
	}
	return fmt.Sprintf("fetching %s: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
