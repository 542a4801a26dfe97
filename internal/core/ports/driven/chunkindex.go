package driven

import (
	"context"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// ChunkIndex stores embedded chunks partitioned by namespace.
// A query only ever sees chunks written to the same namespace.
type ChunkIndex interface {
	// Index writes all chunks of one entry. Every chunk must carry an
	// embedding. If any write fails, chunks already written for the entry
	// are removed before the error is returned.
	Index(ctx context.Context, ns domain.Namespace, entryID string, chunks []domain.Chunk) (int, error)

	// Query returns up to topK chunks most similar to vector, best first.
	// Unknown namespaces yield no hits.
	Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int) ([]domain.ChunkHit, error)

	// DeleteEntry removes every chunk of the entry. Idempotent.
	DeleteEntry(ctx context.Context, ns domain.Namespace, entryID string) error

	// EntryIDs lists the distinct entry IDs that have chunks in the namespace.
	EntryIDs(ctx context.Context, ns domain.Namespace) ([]string, error)

	// Namespaces lists namespaces that have a partition.
	Namespaces() []domain.Namespace

	// Count returns the number of chunks in the namespace.
	Count(ns domain.Namespace) int
}
