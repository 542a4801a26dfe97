package driving

import (
	"context"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// LifecycleService reads and removes entries.
type LifecycleService interface {
	// GetEntry returns an entry owned by the tenant.
	GetEntry(ctx context.Context, tenant domain.Tenant, entryID string) (*domain.Entry, error)

	// ListEntries returns the tenant's entries, newest first.
	ListEntries(ctx context.Context, tenant domain.Tenant) ([]domain.Entry, error)

	// DeleteEntry removes the blob, chunks and record of an owned entry.
	DeleteEntry(ctx context.Context, tenant domain.Tenant, entryID string) error

	// Reconcile removes chunk sets whose entry no longer exists and
	// returns how many entries were cleaned.
	Reconcile(ctx context.Context, ns domain.Namespace) (int, error)
}
