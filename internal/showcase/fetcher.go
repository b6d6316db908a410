package showcase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/showcase/internal/metrics"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Fetcher reads collections with a snapshot fallback.
type Fetcher struct {
	store     types.Datastore
	snapshots types.SnapshotStore
	opts      options
}

// NewFetcher returns a Fetcher reading from store and keeping snapshots in
// snapshots.
func NewFetcher(store types.Datastore, snapshots types.SnapshotStore, opts ...Option) *Fetcher {
	return &Fetcher{
		store:     store,
		snapshots: snapshots,
		opts:      buildOptions(opts),
	}
}

// Rows reads every row of collection in its default order.
//
// A successful read replaces the collection's snapshot and is returned. A
// failed read is logged and answered from the snapshot, or with an empty
// slice when there is none. The snapshot is never written on failure. The
// result is never nil and no error is returned.
func (f *Fetcher) Rows(ctx context.Context, collection string) []json.RawMessage {
	rows, err := f.store.Select(ctx, collection, types.DefaultOrder(collection))
	if err != nil {
		f.opts.log.Warn("remote read failed, using snapshot",
			"collection", collection, "error", err)
		return f.snapshotRows(collection)
	}

	if rows == nil {
		rows = []json.RawMessage{}
	}
	if err := f.snapshots.Set(collection, rows); err != nil {
		f.opts.log.Warn("snapshot write failed",
			"collection", collection, "error", err)
	}
	f.opts.metrics.ObserveFetch(collection, metrics.SourceRemote)
	return rows
}

func (f *Fetcher) snapshotRows(collection string) []json.RawMessage {
	rows, ok, err := f.snapshots.Get(collection)
	if err != nil {
		f.opts.log.Warn("snapshot read failed",
			"collection", collection, "error", err)
		ok = false
	}
	if !ok {
		f.opts.metrics.ObserveFetch(collection, metrics.SourceEmpty)
		return []json.RawMessage{}
	}
	f.opts.metrics.ObserveFetch(collection, metrics.SourceSnapshot)
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return rows
}

// Projects returns the projects collection, newest first.
func (f *Fetcher) Projects(ctx context.Context) []types.Project {
	return decodeRows[types.Project](f.opts.log, types.CollectionProjects, f.Rows(ctx, types.CollectionProjects))
}

// Certificates returns the certificates collection, newest first.
func (f *Fetcher) Certificates(ctx context.Context) []types.Certificate {
	return decodeRows[types.Certificate](f.opts.log, types.CollectionCertificates, f.Rows(ctx, types.CollectionCertificates))
}

// Comments returns the comments collection, newest first.
func (f *Fetcher) Comments(ctx context.Context) []types.Comment {
	return decodeRows[types.Comment](f.opts.log, types.CollectionComments, f.Rows(ctx, types.CollectionComments))
}

// Project reads one project by id. When the service cannot be reached the
// projects snapshot is searched instead.
// Returns ErrNotFound if neither source has the project.
func (f *Fetcher) Project(ctx context.Context, id string) (types.Project, error) {
	row, err := f.store.SelectByID(ctx, types.CollectionProjects, id)
	if err == nil {
		var p types.Project
		if err := json.Unmarshal(row, &p); err != nil {
			return types.Project{}, fmt.Errorf("decode project %s: %w", id, err)
		}
		return p, nil
	}
	if errors.Is(err, types.ErrNotFound) {
		return types.Project{}, err
	}

	f.opts.log.Warn("remote project read failed, using snapshot", "id", id, "error", err)
	rows, ok, serr := f.snapshots.Get(types.CollectionProjects)
	if serr != nil {
		f.opts.log.Warn("snapshot read failed", "collection", types.CollectionProjects, "error", serr)
	}
	if ok {
		for _, p := range decodeRows[types.Project](f.opts.log, types.CollectionProjects, rows) {
			if p.Key() == id {
				return p, nil
			}
		}
	}
	return types.Project{}, fmt.Errorf("project %s: %w", id, types.ErrNotFound)
}

// Stats summarizes the snapshots for the profile section.
type Stats struct {
	Projects        int `json:"projects"`
	Certificates    int `json:"certificates"`
	YearsExperience int `json:"years_experience"`
}

// Stats counts the snapshotted projects and certificates without touching
// the network, and the whole years elapsed since startYear.
func (f *Fetcher) Stats(startYear int) Stats {
	return Stats{
		Projects:        f.snapshotCount(types.CollectionProjects),
		Certificates:    f.snapshotCount(types.CollectionCertificates),
		YearsExperience: yearsSince(startYear, f.opts.now()),
	}
}

func (f *Fetcher) snapshotCount(collection string) int {
	rows, ok, err := f.snapshots.Get(collection)
	if err != nil {
		f.opts.log.Warn("snapshot read failed", "collection", collection, "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	return len(rows)
}

func yearsSince(startYear int, now time.Time) int {
	if startYear <= 0 {
		return 0
	}
	if y := now.Year() - startYear; y > 0 {
		return y
	}
	return 0
}

// decodeRows decodes each row into T. Rows that do not decode are logged
// and skipped. The result is never nil.
func decodeRows[T any](log *slog.Logger, collection string, rows []json.RawMessage) []T {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			log.Warn("skipping malformed row",
				"collection", collection, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
