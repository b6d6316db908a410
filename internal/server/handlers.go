package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/showcase/internal/showcase"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

type handlers struct {
	deps Deps
	log  *slog.Logger
}

func (h *handlers) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, types.ProjectViews(h.deps.Fetcher.Projects(c.Request.Context())))
}

func (h *handlers) getProject(c *gin.Context) {
	p, err := h.deps.Fetcher.Project(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p.View())
}

func (h *handlers) listCertificates(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Fetcher.Certificates(c.Request.Context()))
}

func (h *handlers) listComments(c *gin.Context) {
	c.JSON(http.StatusOK, types.PartitionPinned(h.deps.Fetcher.Comments(c.Request.Context())))
}

func (h *handlers) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Fetcher.Stats(h.deps.StartYear))
}

func (h *handlers) postComment(c *gin.Context) {
	in := showcase.CommentInput{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Comment: c.PostForm("comment"),
	}

	header, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// No photo attached.
	case err != nil:
		respondError(c, http.StatusBadRequest, fmt.Sprintf("read form: %s", err))
		return
	default:
		photo, err := readPhoto(header)
		if err != nil {
			h.fail(c, err)
			return
		}
		in.Photo = photo
	}

	created, err := h.deps.Submitter.Submit(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// readPhoto loads an uploaded file, refusing oversized files before reading
// them.
func readPhoto(header *multipart.FileHeader) (*showcase.Photo, error) {
	if header.Size > showcase.MaxPhotoSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", types.ErrInvalidPhoto, header.Size, showcase.MaxPhotoSize)
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, showcase.MaxPhotoSize+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		// Untyped upload; let the submitter sniff it.
		contentType = ""
	}
	return &showcase.Photo{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// fail maps domain errors onto HTTP statuses.
func (h *handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	respondError(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidPhoto), errors.Is(err, types.ErrInvalidComment):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// apiError is the body of every error response.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": apiError{Code: status, Message: message}})
}
