package showcase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/showcase/internal/metrics"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// CommentInput is a guestbook form submission.
type CommentInput struct {
	Name    string
	Email   string
	Comment string
	Photo   *Photo
}

// Submitter posts comments.
type Submitter struct {
	store   types.Datastore
	blobs   types.BlobStore
	fetcher *Fetcher
	opts    options
}

// NewSubmitter returns a Submitter inserting into store and uploading photos
// to blobs. fetcher, when non-nil, is used to refresh comments after a
// successful insert. A nil blobs drops every photo.
func NewSubmitter(store types.Datastore, blobs types.BlobStore, fetcher *Fetcher, opts ...Option) *Submitter {
	return &Submitter{
		store:   store,
		blobs:   blobs,
		fetcher: fetcher,
		opts:    buildOptions(opts),
	}
}

// Submit validates in, uploads its photo and inserts the comment.
//
// Validation failures return errors wrapping types.ErrInvalidComment or
// types.ErrInvalidPhoto before any network call. A failed photo upload is
// logged and the comment is posted without a photo. A failed insert returns
// an error wrapping types.ErrBackend. Submissions are not deduplicated.
func (s *Submitter) Submit(ctx context.Context, in CommentInput) (types.Comment, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	body := strings.TrimSpace(in.Comment)
	if name == "" || email == "" || body == "" {
		s.opts.metrics.ObserveSubmission(metrics.ResultInvalid)
		return types.Comment{}, fmt.Errorf("%w: name, email and comment are required", types.ErrInvalidComment)
	}

	var contentType string
	if in.Photo != nil {
		ct, err := ValidatePhoto(*in.Photo)
		if err != nil {
			s.opts.metrics.ObserveSubmission(metrics.ResultInvalid)
			return types.Comment{}, err
		}
		contentType = ct
	}

	row := types.NewComment{
		Name:    name,
		Email:   email,
		Comment: body,
	}
	if in.Photo != nil {
		row.Photo = s.uploadPhoto(ctx, *in.Photo, contentType)
	}

	raw, err := s.store.Insert(ctx, types.CollectionComments, row)
	if err != nil {
		s.opts.metrics.ObserveSubmission(metrics.ResultBackend)
		s.opts.log.Error("comment insert failed", "error", err)
		return types.Comment{}, fmt.Errorf("insert comment: %w: %w", types.ErrBackend, err)
	}
	s.opts.metrics.ObserveSubmission(metrics.ResultCreated)

	created := types.Comment{Name: row.Name, Email: row.Email, Comment: row.Comment, Photo: row.Photo}
	if err := json.Unmarshal(raw, &created); err != nil {
		s.opts.log.Warn("inserted comment did not decode", "error", err)
	}

	if s.fetcher != nil {
		s.fetcher.Rows(ctx, types.CollectionComments)
	}
	return created, nil
}

// uploadPhoto stores p and returns its public URL, or nil when the upload
// fails or no blob store is configured.
func (s *Submitter) uploadPhoto(ctx context.Context, p Photo, contentType string) *string {
	if s.blobs == nil {
		s.opts.log.Warn("no blob store configured, posting without photo")
		return nil
	}

	path := s.photoPath(p, contentType)
	if err := s.blobs.Upload(ctx, path, p.Data, contentType); err != nil {
		s.opts.metrics.ObserveUpload(metrics.ResultFailed)
		s.opts.log.Warn("photo upload failed, posting without photo", "path", path, "error", err)
		return nil
	}
	s.opts.metrics.ObserveUpload(metrics.ResultOK)

	url := s.blobs.PublicURL(path)
	if url == "" {
		return nil
	}
	return &url
}

// photoPath names the object <prefix>/<unix-ms>-<suffix>.<ext> so that
// concurrent uploads do not collide.
func (s *Submitter) photoPath(p Photo, contentType string) string {
	return fmt.Sprintf("%s/%d-%s.%s",
		s.opts.photoPrefix,
		s.opts.now().UnixMilli(),
		s.opts.suffix(),
		photoExtension(p.Name, contentType),
	)
}
