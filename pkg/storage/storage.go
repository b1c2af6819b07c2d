// Package storage abstracts where uploaded image bytes live.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Delete when the object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store persists objects under slash-separated keys such as
// "/movies/images/poster-1a2b.png".
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL is the public address clients use to fetch the object.
	URL(key string) string
}
