package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists under the given key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a key/value store for raw image bytes. Content type and
// ownership live on the image record, not here; the store only knows opaque
// keys.
type BlobStore interface {
	Store(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
