// Package showcase holds the read and write paths of the portfolio data
// layer.
//
// Fetcher reads collections from the table service and falls back to the
// last successful snapshot when a read fails, so callers always get a
// usable (possibly empty) result. Submitter validates and posts guestbook
// comments, uploading an optional photo first and dropping it if the upload
// fails.
package showcase
