package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]blob
}

type blob struct {
	data []byte
	info driven.BlobInfo
}

// NewBlobStore creates a new in-memory blob store serving URLs under baseURL.
func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		baseURL: baseURL,
		blobs:   make(map[string]blob),
	}
}

// Store keeps a copy of data and returns its storage ID.
func (s *BlobStore) Store(_ context.Context, ns domain.Namespace, data []byte, contentType string) (string, error) {
	id := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = blob{
		data: bytes.Clone(data),
		info: driven.BlobInfo{Namespace: ns, ContentType: contentType, Size: int64(len(data))},
	}
	return id, nil
}

// URL returns the public location of a blob.
func (s *BlobStore) URL(_ context.Context, storageID string) (string, error) {
	return fmt.Sprintf("%s/files/%s", s.baseURL, storageID), nil
}

// Open returns a reader over the blob bytes.
func (s *BlobStore) Open(_ context.Context, storageID string) (io.ReadCloser, driven.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[storageID]
	if !ok {
		return nil, driven.BlobInfo{}, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.info, nil
}

// Delete removes a blob. Missing blobs are ignored.
func (s *BlobStore) Delete(_ context.Context, storageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, storageID)
	return nil
}

// Len returns the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
