package domain

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned by a StateStore when no document exists under
// the requested key.
var ErrStateNotFound = errors.New("state not found")

// StateStore is the get-whole/set-whole blob medium holding the alerts
// document. Implementations must not interpret the payload.
type StateStore interface {
	// Get returns the document stored under key, or ErrStateNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the document stored under key.
	Set(ctx context.Context, key string, value []byte) error
}
