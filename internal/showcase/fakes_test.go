package showcase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

var errOffline = errors.New("dial tcp: connection refused")

// fakeStore is an in-memory types.Datastore with switchable failures.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string][]json.RawMessage
	selectErr error
	insertErr error
	selects   int
	byID      int
	inserts   []any
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string][]json.RawMessage), nextID: 100}
}

func (s *fakeStore) put(collection string, rows ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		out[i] = json.RawMessage(r)
	}
	s.rows[collection] = out
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selects + s.byID + len(s.inserts)
}

func (s *fakeStore) Select(ctx context.Context, collection string, order types.Order) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selects++
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return s.rows[collection], nil
}

func (s *fakeStore) SelectByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID++
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	for _, r := range s.rows[collection] {
		var probe struct {
			ID json.Number `json:"id"`
		}
		if json.Unmarshal(r, &probe) == nil && probe.ID.String() == id {
			return r, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *fakeStore) Insert(ctx context.Context, collection string, row any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts = append(s.inserts, row)
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	nc, ok := row.(types.NewComment)
	if !ok {
		return nil, fmt.Errorf("unexpected row %T", row)
	}
	s.nextID++
	c := types.Comment{ID: s.nextID, Name: nc.Name, Email: nc.Email, Comment: nc.Comment, Photo: nc.Photo}
	data, _ := json.Marshal(c)
	s.rows[collection] = append([]json.RawMessage{data}, s.rows[collection]...)
	return data, nil
}

// fakeBlobs is an in-memory types.BlobStore.
type fakeBlobs struct {
	err     error
	uploads map[string]string // path -> content type
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploads: make(map[string]string)}
}

func (b *fakeBlobs) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if b.err != nil {
		return b.err
	}
	b.uploads[path] = contentType
	return nil
}

func (b *fakeBlobs) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
