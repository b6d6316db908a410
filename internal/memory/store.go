// Package memory implements an in-process snapshot store. Snapshots do not
// survive a restart; it backs tests and the "memory" snapshot backend.
package memory

import (
	"encoding/json"
	"sync"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Store is a map-backed types.SnapshotStore.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]json.RawMessage
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{snapshots: make(map[string][]json.RawMessage)}
}

// Get returns a copy of the snapshot for key.
func (s *Store) Get(key string) ([]json.RawMessage, bool, error) {
	if key == "" {
		return nil, false, types.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	return cloneRows(rows), true, nil
}

// Set replaces the snapshot for key with a copy of rows.
func (s *Store) Set(key string, rows []json.RawMessage) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[key] = cloneRows(rows)
	return nil
}

// Detach is a no-op; it lets Store stand in for the durable backends.
func (s *Store) Detach() error {
	return nil
}

func cloneRows(rows []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		cp := make(json.RawMessage, len(r))
		copy(cp, r)
		out[i] = cp
	}
	return out
}
