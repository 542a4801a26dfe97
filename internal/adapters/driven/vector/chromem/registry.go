// Package chromem implements driven.ChunkIndex on chromem-go.
//
// Every namespace gets its own collection. A query runs against exactly one
// collection, so chunks of another tenant are never candidates.
package chromem

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/all-black-493/supportly/internal/core/domain"
)

const collectionPrefix = "kb_"

// errNoEmbeddingFunc is returned if chromem is ever asked to embed text itself.
var errNoEmbeddingFunc = errors.New("chunk embeddings must be computed before indexing")

// Registry maps namespaces to their chromem collections.
type Registry struct {
	mu sync.Mutex
	db *chromem.DB
}

// NewRegistry wraps a chromem database.
func NewRegistry(db *chromem.DB) *Registry {
	return &Registry{db: db}
}

// CollectionName returns the collection used for a namespace.
// The hex encoding is reversible so Namespaces can recover the tenant.
func CollectionName(ns domain.Namespace) string {
	return collectionPrefix + hex.EncodeToString([]byte(ns))
}

// Collection returns the namespace's collection, creating it on first write.
func (r *Registry) Collection(ns domain.Namespace) (*chromem.Collection, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	col, err := r.db.GetOrCreateCollection(CollectionName(ns), map[string]string{"namespace": string(ns)}, refuseEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: collection for %q: %w", domain.ErrTransientIO, ns, err)
	}
	return col, nil
}

// Lookup returns the namespace's collection or nil. It never creates one.
func (r *Registry) Lookup(ns domain.Namespace) *chromem.Collection {
	if ns.Validate() != nil {
		return nil
	}
	return r.db.GetCollection(CollectionName(ns), refuseEmbedding)
}

// Namespaces lists every namespace that has a collection, sorted.
func (r *Registry) Namespaces() []domain.Namespace {
	var result []domain.Namespace
	for name := range r.db.ListCollections() {
		encoded, ok := strings.CutPrefix(name, collectionPrefix)
		if !ok {
			continue
		}
		raw, err := hex.DecodeString(encoded)
		if err != nil {
			continue
		}
		result = append(result, domain.Namespace(raw))
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func refuseEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}
