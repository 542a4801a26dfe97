package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
	"github.com/all-black-493/supportly/internal/logger"
)

// Ensure LifecycleService implements the interface.
var _ driving.LifecycleService = (*LifecycleService)(nil)

// LifecycleService reads, deletes and repairs entries.
type LifecycleService struct {
	entries  driven.EntryStore
	index    driven.ChunkIndex
	blobs    driven.BlobStore
	inflight *InFlight
}

// NewLifecycleService creates a lifecycle service. inflight may be nil.
func NewLifecycleService(
	entries driven.EntryStore,
	index driven.ChunkIndex,
	blobs driven.BlobStore,
	inflight *InFlight,
) *LifecycleService {
	return &LifecycleService{
		entries:  entries,
		index:    index,
		blobs:    blobs,
		inflight: inflight,
	}
}

// owned loads an entry and checks the tenant uploaded it.
func (s *LifecycleService) owned(ctx context.Context, tenant domain.Tenant, entryID string) (*domain.Entry, error) {
	if !tenant.Resolved() {
		return nil, fmt.Errorf("%w: no tenant", domain.ErrUnauthorized)
	}

	entry, err := s.entries.GetEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entryID, err)
	}

	if entry.UploadedBy() != string(tenant.Namespace) || entry.Namespace != tenant.Namespace {
		logger.Warn("ownership mismatch: %s (subject %q) attempted to access entry %s uploaded by %q",
			tenant.Namespace, tenant.Subject, entryID, entry.UploadedBy())
		return nil, fmt.Errorf("%w: entry %s belongs to another namespace", domain.ErrUnauthorized, entryID)
	}
	return entry, nil
}

// GetEntry returns an entry owned by the tenant.
func (s *LifecycleService) GetEntry(ctx context.Context, tenant domain.Tenant, entryID string) (*domain.Entry, error) {
	return s.owned(ctx, tenant, entryID)
}

// ListEntries returns the tenant's entries, newest first.
func (s *LifecycleService) ListEntries(ctx context.Context, tenant domain.Tenant) ([]domain.Entry, error) {
	if !tenant.Resolved() {
		return nil, fmt.Errorf("%w: no tenant", domain.ErrUnauthorized)
	}
	return s.entries.ListEntries(ctx, tenant.Namespace)
}

// DeleteEntry removes an owned entry: blob, then chunks, then the record.
// Every step is idempotent, so retrying after a partial failure completes
// the delete.
func (s *LifecycleService) DeleteEntry(ctx context.Context, tenant domain.Tenant, entryID string) error {
	entry, err := s.owned(ctx, tenant, entryID)
	if err != nil {
		return err
	}

	if id := entry.StorageID(); id != "" {
		if err := s.blobs.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete blob %s: %w", id, err)
		}
	}
	if err := s.index.DeleteEntry(ctx, entry.Namespace, entry.ID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.entries.DeleteEntry(ctx, entry.ID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	logger.Info("deleted entry %s (%s) from %s", entry.ID, entry.Key, entry.Namespace)
	return nil
}

// Reconcile removes chunk sets in ns whose entry record does not exist,
// such as those left by a crash between indexing and commit. Entries still
// being ingested are skipped. It returns the number of entries cleaned.
func (s *LifecycleService) Reconcile(ctx context.Context, ns domain.Namespace) (int, error) {
	if err := ns.Validate(); err != nil {
		return 0, err
	}

	ids, err := s.index.EntryIDs(ctx, ns)
	if err != nil {
		return 0, fmt.Errorf("list indexed entries: %w", err)
	}

	cleaned := 0
	for _, id := range ids {
		if s.inflight.Contains(id) {
			continue
		}

		entry, err := s.entries.GetEntry(ctx, id)
		switch {
		case err == nil && entry.Namespace == ns:
			continue
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return cleaned, fmt.Errorf("load entry %s: %w", id, err)
		}

		if err := s.index.DeleteEntry(ctx, ns, id); err != nil {
			return cleaned, fmt.Errorf("delete orphaned chunks of %s: %w", id, err)
		}
		logger.Info("reconcile: removed orphaned chunks of %s in %s", id, ns)
		cleaned++
	}

	return cleaned, nil
}
