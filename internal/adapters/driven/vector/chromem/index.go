package chromem

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.ChunkIndex = (*Index)(nil)

// Chunk metadata keys stored alongside each vector.
const (
	metaEntryID   = "entry_id"
	metaNamespace = "namespace"
	metaPosition  = "position"
	metaOffset    = "offset"
)

// defaultBatchSize is how many chunks are written per AddDocuments call.
const defaultBatchSize = 64

// Index stores chunk vectors in per-namespace chromem collections.
type Index struct {
	registry   *Registry
	dimensions int
	batchSize  int
}

// NewIndex creates an in-memory index for vectors of the given size.
func NewIndex(dimensions int) *Index {
	return &Index{
		registry:   NewRegistry(chromem.NewDB()),
		dimensions: dimensions,
		batchSize:  defaultBatchSize,
	}
}

// NewPersistentIndex creates an index persisted under dir.
func NewPersistentIndex(dir string, dimensions int) (*Index, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	return &Index{
		registry:   NewRegistry(db),
		dimensions: dimensions,
		batchSize:  defaultBatchSize,
	}, nil
}

// Registry exposes the namespace registry.
func (x *Index) Registry() *Registry {
	return x.registry
}

// Dimensions returns the vector size this index accepts.
func (x *Index) Dimensions() int {
	return x.dimensions
}

// Index writes the chunks of one entry, removing partial writes on failure.
func (x *Index) Index(ctx context.Context, ns domain.Namespace, entryID string, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		if c.EntryID != entryID {
			return 0, fmt.Errorf("%w: chunk %s belongs to entry %q", domain.ErrInvalidInput, c.ID, c.EntryID)
		}
		if c.Namespace != "" && c.Namespace != ns {
			return 0, fmt.Errorf("%w: chunk %s belongs to namespace %q", domain.ErrInvalidInput, c.ID, c.Namespace)
		}
		if len(c.Embedding) != x.dimensions {
			return 0, fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
				domain.ErrInvalidInput, c.ID, len(c.Embedding), x.dimensions)
		}
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: c.Embedding,
			Metadata: map[string]string{
				metaEntryID:   entryID,
				metaNamespace: string(ns),
				metaPosition:  strconv.Itoa(c.Position),
				metaOffset:    strconv.Itoa(c.Offset),
			},
		})
	}

	col, err := x.registry.Collection(ns)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(docs); start += x.batchSize {
		end := min(start+x.batchSize, len(docs))
		if err := col.AddDocuments(ctx, docs[start:end], 1); err != nil {
			// Leave nothing behind for this entry, even if ctx is done.
			cleanupCtx := context.WithoutCancel(ctx)
			if delErr := col.Delete(cleanupCtx, map[string]string{metaEntryID: entryID}, nil); delErr != nil {
				logger.Warn("index rollback for entry %s failed: %v", entryID, delErr)
			}
			return 0, fmt.Errorf("%w: adding chunks: %w", domain.ErrTransientIO, err)
		}
	}

	logger.Debug("indexed %d chunks for entry %s in %s", len(docs), entryID, ns)
	return len(docs), nil
}

// Query returns the most similar chunks in the namespace.
func (x *Index) Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int) ([]domain.ChunkHit, error) {
	col := x.registry.Lookup(ns)
	if col == nil || topK <= 0 {
		return nil, nil
	}
	if len(vector) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", domain.ErrInvalidInput, len(vector), x.dimensions)
	}

	results, err := queryUpTo(ctx, col, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]domain.ChunkHit, 0, len(results))
	for _, r := range results {
		if r.Metadata[metaNamespace] != string(ns) {
			continue
		}
		position, _ := strconv.Atoi(r.Metadata[metaPosition])
		hits = append(hits, domain.ChunkHit{
			EntryID:  r.Metadata[metaEntryID],
			ChunkID:  r.ID,
			Content:  r.Content,
			Position: position,
			Score:    float64(r.Similarity),
		})
	}
	return hits, nil
}

// DeleteEntry removes every chunk of the entry.
func (x *Index) DeleteEntry(ctx context.Context, ns domain.Namespace, entryID string) error {
	col := x.registry.Lookup(ns)
	if col == nil {
		return nil
	}
	if err := col.Delete(ctx, map[string]string{metaEntryID: entryID}, nil); err != nil {
		return fmt.Errorf("%w: deleting chunks: %w", domain.ErrTransientIO, err)
	}
	return nil
}

// EntryIDs lists the distinct entries with chunks in the namespace.
func (x *Index) EntryIDs(ctx context.Context, ns domain.Namespace) ([]string, error) {
	col := x.registry.Lookup(ns)
	if col == nil {
		return nil, nil
	}
	if x.dimensions == 0 {
		return nil, nil
	}

	// chromem has no listing API: a query with nResults = Count returns every document.
	probe := make([]float32, x.dimensions)
	probe[0] = 1
	results, err := queryUpTo(ctx, col, probe, col.Count())
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, r := range results {
		id := r.Metadata[metaEntryID]
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// Namespaces lists namespaces that have a collection.
func (x *Index) Namespaces() []domain.Namespace {
	return x.registry.Namespaces()
}

// Count returns the number of chunks in the namespace.
func (x *Index) Count(ns domain.Namespace) int {
	col := x.registry.Lookup(ns)
	if col == nil {
		return 0
	}
	return col.Count()
}

// queryUpTo runs a query for at most limit results.
// chromem-go rejects nResults above the collection size, which can shrink
// between Count and the query when a delete runs concurrently; one retry
// with a fresh count covers that.
func queryUpTo(ctx context.Context, col *chromem.Collection, vector []float32, limit int) ([]chromem.Result, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		n := min(limit, col.Count())
		if n <= 0 {
			return nil, nil
		}
		results, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
		if err == nil {
			return results, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
