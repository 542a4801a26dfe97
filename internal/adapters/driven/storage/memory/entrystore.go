package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// Ensure EntryStore implements the interface.
var _ driven.EntryStore = (*EntryStore)(nil)

// EntryStore is an in-memory implementation of driven.EntryStore.
// The hash index is updated under the same lock as the entries, so
// CreateEntry is atomic per (namespace, hash).
type EntryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.Entry
	byHash  map[hashKey]string
}

type hashKey struct {
	ns   domain.Namespace
	hash string
}

// NewEntryStore creates a new in-memory entry store.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[string]domain.Entry),
		byHash:  make(map[hashKey]string),
	}
}

// CreateEntry stores the entry unless the namespace already holds its hash.
func (s *EntryStore) CreateEntry(_ context.Context, entry *domain.Entry) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := hashKey{ns: entry.Namespace, hash: entry.ContentHash}
	if id, ok := s.byHash[key]; ok {
		existing := cloneEntry(s.entries[id])
		return &existing, domain.ErrAlreadyExists
	}

	stored := cloneEntry(*entry)
	s.entries[entry.ID] = stored
	s.byHash[key] = entry.ID

	out := cloneEntry(stored)
	return &out, nil
}

// GetEntry retrieves an entry by ID.
func (s *EntryStore) GetEntry(_ context.Context, id string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneEntry(entry)
	return &out, nil
}

// FindByHash retrieves the namespace's entry for a content hash.
func (s *EntryStore) FindByHash(_ context.Context, ns domain.Namespace, contentHash string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hashKey{ns: ns, hash: contentHash}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneEntry(s.entries[id])
	return &out, nil
}

// ListEntries returns the namespace's entries, newest first.
func (s *EntryStore) ListEntries(_ context.Context, ns domain.Namespace) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Entry
	for _, entry := range s.entries {
		if entry.Namespace == ns {
			result = append(result, cloneEntry(entry))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteEntry removes an entry. Missing entries are ignored.
func (s *EntryStore) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil
	}
	delete(s.entries, id)
	delete(s.byHash, hashKey{ns: entry.Namespace, hash: entry.ContentHash})
	return nil
}

// CountEntries returns the number of entries in the namespace.
func (s *EntryStore) CountEntries(_ context.Context, ns domain.Namespace) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, entry := range s.entries {
		if entry.Namespace == ns {
			n++
		}
	}
	return n, nil
}

func cloneEntry(e domain.Entry) domain.Entry {
	if e.Metadata != nil {
		md := make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			md[k] = v
		}
		e.Metadata = md
	}
	return e
}
