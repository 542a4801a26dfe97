package driven

import (
	"context"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// EntryStore persists knowledge base entries.
// At most one entry may exist per (namespace, content hash).
type EntryStore interface {
	// CreateEntry inserts the entry unless one with the same namespace and
	// content hash exists. On conflict it returns the existing entry together
	// with domain.ErrAlreadyExists. The check and insert are atomic.
	CreateEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error)

	// GetEntry retrieves an entry by ID. Returns domain.ErrNotFound if missing.
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)

	// FindByHash returns the entry holding the given content in the namespace,
	// or domain.ErrNotFound.
	FindByHash(ctx context.Context, ns domain.Namespace, contentHash string) (*domain.Entry, error)

	// ListEntries returns the namespace's entries, newest first.
	ListEntries(ctx context.Context, ns domain.Namespace) ([]domain.Entry, error)

	// DeleteEntry removes an entry. Deleting a missing entry is not an error.
	DeleteEntry(ctx context.Context, id string) error

	// CountEntries returns the number of entries in the namespace.
	CountEntries(ctx context.Context, ns domain.Namespace) (int, error)
}
