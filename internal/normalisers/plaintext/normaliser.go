// Package plaintext extracts text from plain text and text-like formats.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
// "text/*" makes it the fallback for any text subtype without a dedicated normaliser.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/*",
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"application/json",
		"application/xml",
		"application/yaml",
		"application/x-yaml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the content as text.
// Content that is not UTF-8 or contains NUL bytes is rejected as binary.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if !utf8.Valid(raw.Content) || bytes.IndexByte(raw.Content, 0) >= 0 {
		return nil, fmt.Errorf("%w: %s content is not text", domain.ErrUnsupportedFormat, raw.MIMEType)
	}

	return normalisers.Result(raw, titleFromMetadata(raw), string(raw.Content), "text"), nil
}

// titleFromMetadata honours an explicit title supplied with the upload.
func titleFromMetadata(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return ""
}
