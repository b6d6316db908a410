package types

import (
	"context"
	"encoding/json"
	"errors"
)

// Datastore is the hosted table service as seen by the fetcher and the
// submitter. Rows are returned undecoded so callers can snapshot them as
// received.
type Datastore interface {
	// Select returns every row of a collection in the given order.
	Select(ctx context.Context, collection string, order Order) ([]json.RawMessage, error)

	// SelectByID returns the row with the given id.
	// Returns ErrNotFound if no row matches.
	SelectByID(ctx context.Context, collection, id string) (json.RawMessage, error)

	// Insert writes one row and returns the row as stored by the service.
	Insert(ctx context.Context, collection string, row any) (json.RawMessage, error)
}

// BlobStore holds uploaded files such as comment photos.
type BlobStore interface {
	// Upload stores data under path. Existing objects are not overwritten.
	Upload(ctx context.Context, path string, data []byte, contentType string) error

	// PublicURL returns the address at which path can be fetched.
	PublicURL(path string) string
}

// SnapshotStore keeps the last known-good rows of each collection.
// Implementations must be safe for concurrent use.
type SnapshotStore interface {
	// Get returns the snapshot for key. ok is false when none exists.
	Get(key string) (rows []json.RawMessage, ok bool, err error)

	// Set replaces the snapshot for key.
	Set(key string, rows []json.RawMessage) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("snapshot store is detached")
	ErrAlreadyAttached = errors.New("snapshot store is already attached")
	ErrInvalidKey      = errors.New("invalid snapshot key")
)

// Fetch and submission errors.
var (
	ErrNotFound       = errors.New("entity not found")
	ErrInvalidPhoto   = errors.New("invalid photo")
	ErrInvalidComment = errors.New("invalid comment")
	ErrBackend        = errors.New("backend error")
)
