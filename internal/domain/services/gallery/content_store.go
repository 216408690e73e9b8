package gallery

import (
	"context"

	"gallery/internal/domain/models/gallery"
)

// Blob is an uploaded image.
type Blob struct {
	Filename string
	Data     []byte
}

// ContentStore stores artwork images and hands back a retrievable URL.
type ContentStore interface {
	// Put uploads the blob under a key derived from pathHint and returns its URL
	Put(ctx context.Context, blob Blob, pathHint gallery.Path) (string, error)

	// Delete removes the blob behind uri. Deleting a missing or foreign
	// URI is a no-op, so Delete is idempotent.
	Delete(ctx context.Context, uri string) error
}
