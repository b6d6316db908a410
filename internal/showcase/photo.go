package showcase

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// MaxPhotoSize is the largest accepted comment photo, 5 MiB.
const MaxPhotoSize = 5 << 20

// Photo is an image attached to a comment.
type Photo struct {
	Name        string // original file name, used for the extension
	ContentType string // declared type; sniffed from Data when empty
	Data        []byte
}

// ValidatePhoto checks size and type and returns the effective content type.
// Failures wrap types.ErrInvalidPhoto.
func ValidatePhoto(p Photo) (string, error) {
	if len(p.Data) > MaxPhotoSize {
		return "", fmt.Errorf("%w: photo is %d bytes, limit is %d", types.ErrInvalidPhoto, len(p.Data), MaxPhotoSize)
	}

	contentType := strings.TrimSpace(p.ContentType)
	if contentType == "" {
		contentType = mimetype.Detect(p.Data).String()
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: %q is not an image", types.ErrInvalidPhoto, mediaType)
	}
	return mediaType, nil
}

// photoExtension picks the object name extension: the original file's, or
// the one registered for contentType.
func photoExtension(name, contentType string) string {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); isAlnum(ext) {
		return ext
	}
	if m := mimetype.Lookup(contentType); m != nil {
		if ext := strings.TrimPrefix(m.Extension(), "."); isAlnum(ext) {
			return ext
		}
	}
	return "img"
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
