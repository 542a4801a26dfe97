package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// stubNormaliser returns content, or err when set.
type stubNormaliser struct {
	mimeTypes []string
	priority  int
	content   string
	err       error
	calls     int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimeTypes }
func (s *stubNormaliser) Priority() int                { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, _ *domain.RawDocument) (*driven.NormaliseResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &driven.NormaliseResult{Document: domain.Document{Content: s.content}}, nil
}

func raw(mimeType string) *domain.RawDocument {
	return &domain.RawDocument{Filename: "f", MIMEType: mimeType, Content: []byte("x")}
}

func TestNormaliserRegistry_PriorityOrder(t *testing.T) {
	low := &stubNormaliser{mimeTypes: []string{"text/html"}, priority: 10, content: "low"}
	high := &stubNormaliser{mimeTypes: []string{"text/html"}, priority: 50, content: "high"}
	r := NewNormaliserRegistry(low, high)

	result, err := r.Normalise(context.Background(), raw("text/html"))
	require.NoError(t, err)
	assert.Equal(t, "high", result.Document.Content)
	assert.Zero(t, low.calls)
}

func TestNormaliserRegistry_ExactBeforeWildcard(t *testing.T) {
	wild := &stubNormaliser{mimeTypes: []string{"text/*", "text/plain"}, priority: 90, content: "wild"}
	exact := &stubNormaliser{mimeTypes: []string{"text/markdown"}, priority: 50, content: "exact"}
	r := NewNormaliserRegistry(wild, exact)

	result, err := r.Normalise(context.Background(), raw("text/markdown; charset=utf-8"))
	require.NoError(t, err)
	assert.Equal(t, "exact", result.Document.Content)

	result, err = r.Normalise(context.Background(), raw("text/rtf"))
	require.NoError(t, err)
	assert.Equal(t, "wild", result.Document.Content)

	// Listing the wildcard does not demote an exact match.
	result, err = r.Normalise(context.Background(), raw("text/plain"))
	require.NoError(t, err)
	assert.Equal(t, "wild", result.Document.Content)
}

func TestNormaliserRegistry_FallsThroughUnsupported(t *testing.T) {
	picky := &stubNormaliser{mimeTypes: []string{"application/pdf"}, priority: 60, err: domain.ErrUnsupportedFormat}
	fallback := &stubNormaliser{mimeTypes: []string{"application/pdf"}, priority: 5, content: "fallback"}
	r := NewNormaliserRegistry(picky, fallback)

	result, err := r.Normalise(context.Background(), raw("application/pdf"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Document.Content)
	assert.Equal(t, 1, picky.calls)
}

func TestNormaliserRegistry_Errors(t *testing.T) {
	r := NewNormaliserRegistry(
		&stubNormaliser{mimeTypes: []string{"text/plain"}, priority: 5, content: " \n\t "},
		&stubNormaliser{mimeTypes: []string{"application/json"}, priority: 5, err: errBoom},
	)
	ctx := context.Background()

	_, err := r.Normalise(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.Normalise(ctx, raw("image/png"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = r.Normalise(ctx, raw("text/plain"))
	require.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "no extractable text")

	_, err = r.Normalise(ctx, raw("application/json"))
	assert.ErrorIs(t, err, errBoom)
}

func TestNormaliserRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewNormaliserRegistry(
		&stubNormaliser{mimeTypes: []string{"text/plain", "text/*"}},
		&stubNormaliser{mimeTypes: []string{"application/pdf", "text/plain"}},
	)

	assert.Equal(t, []string{"application/pdf", "text/*", "text/plain"}, r.SupportedMIMETypes())
}
