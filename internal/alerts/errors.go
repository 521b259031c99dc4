package alerts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidObservation is returned by Ingest for an observation without a
	// city name or with a non-finite temperature.
	ErrInvalidObservation = errors.New("invalid observation")

	// ErrStorageFailure wraps read and write failures of the state backend.
	ErrStorageFailure = errors.New("alert storage failure")

	// ErrAlertNotFound is returned by Get when the city has no live alert.
	ErrAlertNotFound = errors.New("alert not found")
)

// CorruptedStateError reports a persisted document that could not be decoded.
// The store recovers from it by starting over with an empty collection.
type CorruptedStateError struct {
	Key string
	Err error
}

func (e *CorruptedStateError) Error() string {
	return fmt.Sprintf("corrupted alerts state under key %q: %v", e.Key, e.Err)
}

func (e *CorruptedStateError) Unwrap() error { return e.Err }
