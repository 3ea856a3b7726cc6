// Package storage abstracts the bucket where uploaded images live.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// Object is a readable image object. Body must be closed by the caller.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64 // 0 when unknown
}

// ObjectStore reads and writes image objects under opaque keys.
type ObjectStore interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key, contentType string, body io.Reader) error
}
