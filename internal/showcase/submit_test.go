package showcase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/showcase/internal/memory"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestSubmitter(store *fakeStore, blobs types.BlobStore) (*Submitter, *Fetcher, *memory.Store) {
	snaps := memory.NewStore()
	opts := []Option{
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		WithSuffix(func() string { return "abc123" }),
	}
	f := NewFetcher(store, snaps, opts...)
	return NewSubmitter(store, blobs, f, opts...), f, snaps
}

func TestSubmit_WithoutPhoto(t *testing.T) {
	store := newFakeStore()
	s, _, snaps := newTestSubmitter(store, newFakeBlobs())

	c, err := s.Submit(context.Background(), CommentInput{Name: " Ana ", Email: "ana@example.com", Comment: "Great work"})
	require.NoError(t, err)
	assert.Equal(t, int64(101), c.ID)
	assert.Equal(t, "Ana", c.Name)
	assert.Nil(t, c.Photo)

	// The comments collection is refreshed after the insert.
	saved, ok, err := snaps.Get(types.CollectionComments)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, saved, 1)
}

func TestSubmit_WithPhoto(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	s, _, _ := newTestSubmitter(store, blobs)

	c, err := s.Submit(context.Background(), CommentInput{
		Name:    "Ana",
		Email:   "ana@example.com",
		Comment: "Hello",
		Photo:   &Photo{Name: "me.PNG", ContentType: "image/png", Data: pngHeader},
	})
	require.NoError(t, err)

	wantPath := "comment-photos/1700000000000-abc123.png"
	assert.Equal(t, "image/png", blobs.uploads[wantPath])
	require.NotNil(t, c.Photo)
	assert.Equal(t, "https://cdn.example.com/"+wantPath, *c.Photo)
}

func TestSubmit_SniffsContentTypeAndExtension(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	s, _, _ := newTestSubmitter(store, blobs)

	_, err := s.Submit(context.Background(), CommentInput{
		Name:    "Ana",
		Email:   "ana@example.com",
		Comment: "Hello",
		Photo:   &Photo{Name: "blob", Data: pngHeader},
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", blobs.uploads["comment-photos/1700000000000-abc123.png"])
}

func TestSubmit_OversizedPhotoMakesNoCalls(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	s, _, _ := newTestSubmitter(store, blobs)

	big := bytes.Repeat([]byte{0}, 6<<20)
	_, err := s.Submit(context.Background(), CommentInput{
		Name:    "Ana",
		Email:   "ana@example.com",
		Comment: "Hello",
		Photo:   &Photo{Name: "big.png", ContentType: "image/png", Data: big},
	})
	assert.ErrorIs(t, err, types.ErrInvalidPhoto)
	assert.Equal(t, 0, store.calls())
	assert.Empty(t, blobs.uploads)
}

func TestSubmit_NonImageRejected(t *testing.T) {
	store := newFakeStore()
	s, _, _ := newTestSubmitter(store, newFakeBlobs())

	tests := []Photo{
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		{Name: "notes.txt", Data: []byte("plain text, no magic")},
		{Name: "doc.pdf", ContentType: "application/pdf; charset=binary", Data: []byte("%PDF-1.4")},
	}
	for _, p := range tests {
		_, err := s.Submit(context.Background(), CommentInput{Name: "Ana", Email: "ana@example.com", Comment: "Hello", Photo: &p})
		assert.ErrorIs(t, err, types.ErrInvalidPhoto, p.Name)
	}
	assert.Equal(t, 0, store.calls())
}

func TestSubmit_UploadFailureDropsPhoto(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	blobs.err = errors.New("bucket unavailable")
	s, _, _ := newTestSubmitter(store, blobs)

	c, err := s.Submit(context.Background(), CommentInput{
		Name:    "Ana",
		Email:   "ana@example.com",
		Comment: "Hello",
		Photo:   &Photo{Name: "me.png", ContentType: "image/png", Data: pngHeader},
	})
	require.NoError(t, err)
	assert.Nil(t, c.Photo)
	require.Len(t, store.inserts, 1)
	assert.Nil(t, store.inserts[0].(types.NewComment).Photo)
}

func TestSubmit_NoBlobStoreDropsPhoto(t *testing.T) {
	store := newFakeStore()
	s, _, _ := newTestSubmitter(store, nil)

	c, err := s.Submit(context.Background(), CommentInput{
		Name:    "Ana",
		Email:   "ana@example.com",
		Comment: "Hello",
		Photo:   &Photo{Name: "me.png", ContentType: "image/png", Data: pngHeader},
	})
	require.NoError(t, err)
	assert.Nil(t, c.Photo)
}

func TestSubmit_InsertFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errOffline
	s, _, snaps := newTestSubmitter(store, newFakeBlobs())

	_, err := s.Submit(context.Background(), CommentInput{Name: "Ana", Email: "ana@example.com", Comment: "Hello"})
	assert.ErrorIs(t, err, types.ErrBackend)
	assert.ErrorIs(t, err, errOffline)

	_, ok, _ := snaps.Get(types.CollectionComments)
	assert.False(t, ok, "no refresh after a failed insert")
}

func TestSubmit_RequiresNameEmailAndComment(t *testing.T) {
	store := newFakeStore()
	s, _, _ := newTestSubmitter(store, newFakeBlobs())

	for _, in := range []CommentInput{
		{Name: "", Email: "ana@example.com", Comment: "Hello"},
		{Name: "Ana", Email: "ana@example.com", Comment: "   "},
		{Name: "Ana", Email: "", Comment: "Hello"},
		{Name: "Ana", Email: " \t", Comment: "Hello"},
	} {
		_, err := s.Submit(context.Background(), in)
		assert.ErrorIs(t, err, types.ErrInvalidComment)
	}
	assert.Equal(t, 0, store.calls())
}

func TestSubmit_NotIdempotent(t *testing.T) {
	store := newFakeStore()
	s, _, _ := newTestSubmitter(store, newFakeBlobs())

	in := CommentInput{Name: "Ana", Email: "ana@example.com", Comment: "Hello"}
	first, err := s.Submit(context.Background(), in)
	require.NoError(t, err)
	second, err := s.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPhotoExtension(t *testing.T) {
	tests := []struct {
		name, file, contentType, want string
	}{
		{name: "from file name", file: "Me.JPG", contentType: "image/jpeg", want: "jpg"},
		{name: "from content type", file: "upload", contentType: "image/png", want: "png"},
		{name: "unsafe extension", file: "x.p%ng", contentType: "image/gif", want: "gif"},
		{name: "unknown everything", file: "upload", contentType: "image/x-unknown", want: "img"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, photoExtension(tt.file, tt.contentType))
		})
	}
}
