package jsonl

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// validKey restricts snapshot keys to names that are safe as file names.
var validKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Store implements types.SnapshotStore with one <key>.jsonl file per
// collection under the data directory.
type Store struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
}

// NewStore creates a detached Store. Call Attach before use.
func NewStore() *Store {
	return &Store{}
}

// Attach validates config and creates the data directory if needed.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	s.dataDir = dataDir
	s.attached = true
	return nil
}

// Detach marks the store detached. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	return nil
}

// Get reads <key>.jsonl. A missing file means no snapshot.
func (s *Store) Get(key string) ([]json.RawMessage, bool, error) {
	if !validKey.MatchString(key) {
		return nil, false, types.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, false, types.ErrStoreDetached
	}

	records, err := readJSONL(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return records, true, nil
}

// Set atomically replaces <key>.jsonl with rows.
func (s *Store) Set(key string, rows []json.RawMessage) error {
	if !validKey.MatchString(key) {
		return types.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	return writeJSONL(s.path(key), rows)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dataDir, key+".jsonl")
}
