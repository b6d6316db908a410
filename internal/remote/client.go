// Package remote is a client for the hosted table and storage service that
// owns projects, certificates and comments. It speaks the PostgREST dialect
// for tables and the storage object API for uploads.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// DefaultTimeout bounds every request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// ErrNotConfigured is returned by every call when no service URL is set.
var ErrNotConfigured = errors.New("remote service not configured")

// Config holds connection settings for the hosted service.
type Config struct {
	URL     string // e.g. "https://abc.supabase.co"
	APIKey  string
	Bucket  string // storage bucket for uploads
	Timeout time.Duration
}

// Client implements types.Datastore and types.BlobStore over HTTP.
type Client struct {
	base   *url.URL
	apiKey string
	bucket string
	http   *http.Client
}

// Error is a non-2xx response from the service.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
}

// NewClient creates a client. An empty URL yields a client whose calls all
// return ErrNotConfigured, so callers fall back to snapshots.
func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		apiKey: cfg.APIKey,
		bucket: cfg.Bucket,
		http:   &http.Client{Timeout: timeout},
	}
	if cfg.URL == "" {
		return c, nil
	}

	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("parse remote url: unsupported scheme %q", base.Scheme)
	}
	c.base = base
	return c, nil
}

// Enabled reports whether a service URL is configured.
func (c *Client) Enabled() bool {
	return c.base != nil
}

// Select returns all rows of collection in the given order.
func (c *Client) Select(ctx context.Context, collection string, order types.Order) ([]json.RawMessage, error) {
	q := url.Values{"select": {"*"}}
	if order.Column != "" {
		dir := "desc"
		if order.Ascending {
			dir = "asc"
		}
		q.Set("order", order.Column+"."+dir)
	}

	var rows []json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.tablePath(collection), q, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return rows, nil
}

// SelectByID returns the row whose id equals id.
// Returns ErrNotFound when the service has no such row.
func (c *Client) SelectByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	q := url.Values{
		"select": {"*"},
		"id":     {"eq." + id},
		"limit":  {"1"},
	}

	var rows []json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, c.tablePath(collection), q, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("select %s %s: %w", collection, id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("select %s %s: %w", collection, id, types.ErrNotFound)
	}
	return rows[0], nil
}

// Insert writes row and returns the stored representation.
func (c *Client) Insert(ctx context.Context, collection string, row any) (json.RawMessage, error) {
	body, err := json.Marshal([]any{row})
	if err != nil {
		return nil, fmt.Errorf("encode %s row: %w", collection, err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Prefer", "return=representation")

	var rows []json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, c.tablePath(collection), nil, headers, body, &rows); err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert %s: service returned no row", collection)
	}
	return rows[0], nil
}

// Upload stores data in the configured bucket under path.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	headers.Set("x-upsert", "false")

	p := "/storage/v1/object/" + c.bucket + "/" + strings.TrimLeft(path, "/")
	if err := c.doJSON(ctx, http.MethodPost, p, nil, headers, data, nil); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the public address of an object in the bucket.
func (c *Client) PublicURL(path string) string {
	if c.base == nil {
		return ""
	}
	return c.base.String() + "/storage/v1/object/public/" + url.PathEscape(c.bucket) + "/" + escapePath(path)
}

func (c *Client) tablePath(collection string) string {
	return "/rest/v1/" + collection
}

// doJSON sends one request and decodes a 2xx JSON body into out (if out is
// non-nil). path is unescaped; url.URL escapes it. Non-2xx responses become
// *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, headers http.Header, body []byte, out any) error {
	if c.base == nil {
		return ErrNotConfigured
	}

	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError builds an *Error from a failed response. The service reports
// failures as {"message": ...} or {"error": ...}.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

// escapePath escapes each segment of an object path, keeping the slashes.
func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
