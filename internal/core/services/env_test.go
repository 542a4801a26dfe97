package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/adapters/driven/embedding/hashing"
	"github.com/all-black-493/supportly/internal/adapters/driven/storage/memory"
	"github.com/all-black-493/supportly/internal/adapters/driven/vector/chromem"
	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/normalisers/markdown"
	"github.com/all-black-493/supportly/internal/normalisers/plaintext"
	"github.com/all-black-493/supportly/internal/postprocessors"
)

const testDims = 64

var (
	tenantA = domain.Tenant{Namespace: "org-a", Subject: "alice"}
	tenantB = domain.Tenant{Namespace: "org-b", Subject: "bob"}
)

// flakyEmbedder fails the first failures calls with err.
type flakyEmbedder struct {
	driven.EmbeddingService
	failures atomic.Int32
	err      error
	calls    atomic.Int32
}

func (f *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, f.err
	}
	return f.EmbeddingService.EmbedBatch(ctx, texts)
}

// faultyIndex wraps a ChunkIndex and can fail or pause Index calls.
type faultyIndex struct {
	driven.ChunkIndex
	indexErr error
	gate     chan struct{}
}

func (f *faultyIndex) Index(ctx context.Context, ns domain.Namespace, entryID string, chunks []domain.Chunk) (int, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if f.indexErr != nil {
		return 0, f.indexErr
	}
	return f.ChunkIndex.Index(ctx, ns, entryID, chunks)
}

// faultyBlobStore wraps a BlobStore and fails the first deleteFailures
// Delete calls transiently. URL fails with urlErr when set.
type faultyBlobStore struct {
	driven.BlobStore
	deleteFailures atomic.Int32
	deleteCalls    atomic.Int32
	urlErr         error
}

func (f *faultyBlobStore) Delete(ctx context.Context, storageID string) error {
	f.deleteCalls.Add(1)
	if f.deleteFailures.Add(-1) >= 0 {
		return fmt.Errorf("%w: disk busy", domain.ErrTransientIO)
	}
	return f.BlobStore.Delete(ctx, storageID)
}

func (f *faultyBlobStore) URL(ctx context.Context, storageID string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.BlobStore.URL(ctx, storageID)
}

// hookedEntryStore runs beforeCreate ahead of every CreateEntry.
type hookedEntryStore struct {
	driven.EntryStore
	beforeCreate func(entry *domain.Entry)
	createErr    error
	getErr       error
}

func (h *hookedEntryStore) CreateEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	if h.beforeCreate != nil {
		h.beforeCreate(entry)
	}
	if h.createErr != nil {
		return nil, h.createErr
	}
	return h.EntryStore.CreateEntry(ctx, entry)
}

func (h *hookedEntryStore) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	if h.getErr != nil {
		return nil, h.getErr
	}
	return h.EntryStore.GetEntry(ctx, id)
}

type testEnv struct {
	entries   *hookedEntryStore
	memStore  *memory.EntryStore
	blobs     *memory.BlobStore
	blobFault *faultyBlobStore
	chromem   *chromem.Index
	index     *faultyIndex
	embedder  *flakyEmbedder
	inflight  *InFlight
	ingest    *IngestionService
	retrieval *RetrievalService
	lifecycle *LifecycleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pipeline, err := postprocessors.NewDefaultPipeline(domain.ChunkerSettings{Size: 200, Overlap: 40})
	require.NoError(t, err)

	memStore := memory.NewEntryStore()
	env := &testEnv{
		entries:  &hookedEntryStore{EntryStore: memStore},
		memStore: memStore,
		blobs:    memory.NewBlobStore("http://kb.test"),
		chromem:  chromem.NewIndex(testDims),
		embedder: &flakyEmbedder{EmbeddingService: hashing.New(testDims)},
		inflight: NewInFlight(),
	}
	env.index = &faultyIndex{ChunkIndex: env.chromem}
	env.blobFault = &faultyBlobStore{BlobStore: env.blobs}

	retry := RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}
	settings := domain.IngestSettings{MaxBytes: 1 << 20, MaxRetries: 2, RetryBackoff: time.Millisecond}

	registry := NewNormaliserRegistry(plaintext.New(), markdown.New())
	indexer := NewIndexer(pipeline, env.embedder, env.index, retry)

	env.ingest = NewIngestionService(env.entries, env.blobFault, registry, indexer, env.index, env.inflight, settings)
	env.retrieval = NewRetrievalService(env.embedder, env.index, env.entries, env.blobFault, retry)
	env.lifecycle = NewLifecycleService(env.entries, env.index, env.blobFault, env.inflight)
	return env
}

var errBoom = errors.New("boom")

// waitGroupDo runs fn n times concurrently and waits.
func waitGroupDo(n int, fn func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fn(i)
		}(i)
	}
	wg.Wait()
}
