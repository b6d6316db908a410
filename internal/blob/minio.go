// Package blob stores comment photos in an S3-compatible bucket through
// MinIO, as an alternative to the hosted service's own storage API.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("blob storage not configured")

// Config holds MinIO connection settings.
type Config struct {
	Endpoint        string // e.g. "minio:9000" or "localhost:9000"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	// PublicURL is the externally reachable base for objects, e.g.
	// "https://cdn.example.com". Defaults to the endpoint.
	PublicURL string
}

// Client implements types.BlobStore on one bucket.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
	enabled   bool
}

// NewClient creates a blob client. An empty Endpoint yields a disabled
// client whose uploads return ErrDisabled.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{bucket: cfg.Bucket}, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio client: bucket must not be empty")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint
	}
	return &Client{
		mc:        mc,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(public, "/"),
		enabled:   true,
	}, nil
}

// Enabled reports whether the client is configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

// EnsureBucket creates the bucket if it does not exist (idempotent).
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.enabled {
		return ErrDisabled
	}
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// Upload puts data at path in the bucket.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if !c.enabled {
		return ErrDisabled
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", c.bucket, err)
	}
	_, err := c.mc.PutObject(ctx, c.bucket, ObjectKey(path), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

// PublicURL returns publicURL/bucket/path with each segment escaped.
func (c *Client) PublicURL(path string) string {
	if !c.enabled {
		return ""
	}
	segments := strings.Split(ObjectKey(path), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.publicURL + "/" + url.PathEscape(c.bucket) + "/" + strings.Join(segments, "/")
}

// ObjectKey normalizes an upload path into an object key.
func ObjectKey(path string) string {
	return strings.TrimLeft(path, "/")
}
