package services

import (
	"context"
	"fmt"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// embedBatchSize is the number of chunks embedded per call.
const embedBatchSize = 64

// Indexer chunks text, embeds the chunks and writes them to the chunk index.
type Indexer struct {
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	index    driven.ChunkIndex
	retry    RetryPolicy
}

// NewIndexer creates an indexer.
func NewIndexer(
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.ChunkIndex,
	retry RetryPolicy,
) *Indexer {
	return &Indexer{
		pipeline: pipeline,
		embedder: embedder,
		index:    index,
		retry:    retry,
	}
}

// Index stores the chunks of text under entryID and returns how many were
// written. Text that yields no chunks is rejected as unsupported. On error
// nothing is left in the index for the entry.
func (i *Indexer) Index(ctx context.Context, ns domain.Namespace, entryID, text string) (int, error) {
	chunks, err := i.pipeline.Process(ctx, &domain.Document{ID: entryID, Content: text})
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no extractable text", domain.ErrUnsupportedFormat)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := retryValue(ctx, i.retry, "embed", func(ctx context.Context) ([][]float32, error) {
			return i.embedder.EmbedBatch(ctx, texts)
		})
		if err != nil {
			return 0, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("%w: embedder returned %d vectors for %d chunks", domain.ErrTransientIO, len(vectors), len(texts))
		}

		for j := range vectors {
			chunks[start+j].Namespace = ns
			chunks[start+j].Embedding = vectors[j]
		}
	}

	count, err := retryValue(ctx, i.retry, "index", func(ctx context.Context) (int, error) {
		return i.index.Index(ctx, ns, entryID, chunks)
	})
	if err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}
	return count, nil
}
