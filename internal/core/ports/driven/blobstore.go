package driven

import (
	"context"
	"io"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// BlobStore keeps the original uploaded bytes.
// I/O failures are reported wrapped in domain.ErrTransientIO.
type BlobStore interface {
	// Store writes data and returns its storage ID.
	Store(ctx context.Context, ns domain.Namespace, data []byte, contentType string) (string, error)

	// URL returns a retrievable location for the blob.
	URL(ctx context.Context, storageID string) (string, error)

	// Open streams the blob back. Returns domain.ErrNotFound if missing.
	Open(ctx context.Context, storageID string) (io.ReadCloser, BlobInfo, error)

	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, storageID string) error
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Namespace   domain.Namespace
	ContentType string
	Size        int64
}
