// Package filesystem stores uploaded files on local disk.
//
// Blobs live at <root>/<hex(namespace)>/<storageId>, with the content type
// kept in a "<storageId>.type" sidecar. Storage IDs are UUIDs, which keeps
// every path derived from a request inside root.
package filesystem

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

const typeSuffix = ".type"

// BlobStore is a directory-backed implementation of driven.BlobStore.
type BlobStore struct {
	root    string
	baseURL string
}

// NewBlobStore creates the root directory if needed.
// URLs are built as <baseURL>/files/<storageId>.
func NewBlobStore(root, baseURL string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &BlobStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory holding all blobs.
func (s *BlobStore) Root() string {
	return s.root
}

// Store writes data under the namespace directory.
func (s *BlobStore) Store(ctx context.Context, ns domain.Namespace, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ns.Validate(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, hex.EncodeToString([]byte(ns)))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", transient("creating namespace directory", err)
	}

	id := uuid.New().String()
	if err := writeAtomic(filepath.Join(dir, id+typeSuffix), []byte(contentType)); err != nil {
		return "", transient("writing content type", err)
	}
	if err := writeAtomic(filepath.Join(dir, id), data); err != nil {
		_ = os.Remove(filepath.Join(dir, id+typeSuffix))
		return "", transient("writing blob", err)
	}
	return id, nil
}

// URL returns the public location of a blob.
func (s *BlobStore) URL(_ context.Context, storageID string) (string, error) {
	if _, err := uuid.Parse(storageID); err != nil {
		return "", fmt.Errorf("%w: bad storage id", domain.ErrInvalidInput)
	}
	return s.baseURL + "/files/" + storageID, nil
}

// Open returns the blob contents and what is known about them.
func (s *BlobStore) Open(_ context.Context, storageID string) (io.ReadCloser, driven.BlobInfo, error) {
	path, ns, err := s.locate(storageID)
	if err != nil {
		return nil, driven.BlobInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, driven.BlobInfo{}, domain.ErrNotFound
		}
		return nil, driven.BlobInfo{}, transient("opening blob", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, driven.BlobInfo{}, transient("stat blob", err)
	}

	contentType := "application/octet-stream"
	if raw, err := os.ReadFile(path + typeSuffix); err == nil && len(raw) > 0 {
		contentType = string(raw)
	}

	return f, driven.BlobInfo{Namespace: ns, ContentType: contentType, Size: stat.Size()}, nil
}

// Delete removes a blob and its sidecar. Missing blobs are ignored.
func (s *BlobStore) Delete(_ context.Context, storageID string) error {
	path, _, err := s.locate(storageID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, p := range []string{path, path + typeSuffix} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return transient("deleting blob", err)
		}
	}
	return nil
}

// locate finds the namespace directory holding storageID.
func (s *BlobStore) locate(storageID string) (string, domain.Namespace, error) {
	if _, err := uuid.Parse(storageID); err != nil {
		return "", "", domain.ErrNotFound
	}

	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return "", "", transient("listing namespaces", err)
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		path := filepath.Join(s.root, d.Name(), storageID)
		if _, err := os.Stat(path); err == nil {
			ns, decodeErr := hex.DecodeString(d.Name())
			if decodeErr != nil {
				continue
			}
			return path, domain.Namespace(ns), nil
		}
	}
	return "", "", domain.ErrNotFound
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientIO, err)
}
