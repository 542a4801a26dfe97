package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
	"github.com/all-black-493/supportly/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Retrieval limits.
const (
	DefaultTopK = 5
	MaxTopK     = 50

	// overFetch is how many chunk hits are requested per wanted entry, so
	// that several chunks of one entry do not crowd out others.
	overFetch = 4

	maxSnippets = 3
)

// RetrievalService answers semantic queries within one namespace.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    driven.ChunkIndex
	entries  driven.EntryStore
	blobs    driven.BlobStore
	retry    RetryPolicy
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	index driven.ChunkIndex,
	entries driven.EntryStore,
	blobs driven.BlobStore,
	retry RetryPolicy,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		entries:  entries,
		blobs:    blobs,
		retry:    retry,
	}
}

// ClampTopK applies the default and the upper bound to a requested topK.
func ClampTopK(topK int) int {
	switch {
	case topK <= 0:
		return DefaultTopK
	case topK > MaxTopK:
		return MaxTopK
	default:
		return topK
	}
}

type scoredSnippet struct {
	text  string
	score float64
}

type entryGroup struct {
	entry    *domain.Entry
	score    float64
	snippets []scoredSnippet
}

// Retrieve embeds the query, searches the tenant's chunks and returns the
// best entries. Hits on entries that are uncommitted, deleted or owned by
// another namespace are dropped.
func (s *RetrievalService) Retrieve(ctx context.Context, tenant domain.Tenant, query string, topK int) ([]domain.RetrievalResult, error) {
	if !tenant.Resolved() {
		return nil, fmt.Errorf("%w: no tenant", domain.ErrUnauthorized)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RetrievalResult{}, nil
	}
	topK = ClampTopK(topK)
	ns := tenant.Namespace

	vector, err := retryValue(ctx, s.retry, "embed query", func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Query(ctx, ns, vector, topK*overFetch)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	groups := make(map[string]*entryGroup)
	skipped := make(map[string]bool)
	for _, hit := range hits {
		if skipped[hit.EntryID] {
			continue
		}
		g, ok := groups[hit.EntryID]
		if !ok {
			entry, err := s.entries.GetEntry(ctx, hit.EntryID)
			if errors.Is(err, domain.ErrNotFound) {
				skipped[hit.EntryID] = true
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("load entry %s: %w", hit.EntryID, err)
			}
			if entry.Namespace != ns {
				logger.Warn("retrieval: chunk %s in %s points at entry of %s", hit.ChunkID, ns, entry.Namespace)
				skipped[hit.EntryID] = true
				continue
			}
			g = &entryGroup{entry: entry, score: hit.Score}
			groups[hit.EntryID] = g
		}
		if len(g.snippets) < maxSnippets {
			g.snippets = append(g.snippets, scoredSnippet{text: hit.Content, score: hit.Score})
		}
	}

	ranked := make([]*entryGroup, 0, len(groups))
	for _, g := range groups {
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.entry.CreatedAt.Equal(b.entry.CreatedAt) {
			return a.entry.CreatedAt.After(b.entry.CreatedAt)
		}
		return a.entry.ID < b.entry.ID
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	results := make([]domain.RetrievalResult, 0, len(ranked))
	for _, g := range ranked {
		snippets := make([]string, len(g.snippets))
		for i, sn := range g.snippets {
			snippets[i] = sn.text
		}
		result := domain.RetrievalResult{
			Entry:    *g.entry,
			Score:    g.score,
			Snippets: snippets,
		}
		if id := g.entry.StorageID(); id != "" {
			if url, err := s.blobs.URL(ctx, id); err == nil {
				result.URL = url
			} else {
				logger.Warn("retrieval: url for blob %s: %v", id, err)
			}
		}
		results = append(results, result)
	}

	return results, nil
}
