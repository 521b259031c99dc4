// Package memory implements domain.StateStore in process memory. It backs the
// default deployment and the unit tests.
package memory

import (
	"context"
	"sync"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
)

// Store keeps documents in a map. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return append([]byte(nil), doc...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append([]byte(nil), value...)
	return nil
}
