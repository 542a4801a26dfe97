// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 200

// Processor splits document content into fixed-size rune windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size in runes.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap in runes.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
//
// A window that does not reach the end of the text is cut at its last
// whitespace, provided the cut still moves past the overlap. Windows that
// are blank after trimming produce no chunk, so positions stay contiguous.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: document has no entry id", domain.ErrInvalidInput)
	}

	runes := []rune(doc.Content)
	total := len(runes)
	stride := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, total/stride+1)

	position := 0
	for start := 0; start < total; {
		end := start + p.chunkSize
		if end >= total {
			end = total
		} else if cut := lastSpace(runes, start+p.overlap+1, end); cut > 0 {
			end = cut
		}

		window := runes[start:end]
		lead := 0
		for lead < len(window) && unicode.IsSpace(window[lead]) {
			lead++
		}
		if text := strings.TrimRightFunc(string(window[lead:]), unicode.IsSpace); text != "" {
			chunks = append(chunks, domain.Chunk{
				ID:       fmt.Sprintf("%s-%04d", doc.ID, position),
				EntryID:  doc.ID,
				Content:  text,
				Position: position,
				Offset:   start + lead,
			})
			position++
		}

		if end == total {
			break
		}
		start = end - p.overlap
	}

	return chunks, nil
}

// lastSpace returns the index of the last whitespace rune in runes[from:to],
// or -1 when there is none.
func lastSpace(runes []rune, from, to int) int {
	for i := to - 1; i >= from; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
