package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/fingerprint"
)

// Ensure NormaliserRegistry implements the interface.
var _ driven.NormaliserRegistry = (*NormaliserRegistry)(nil)

// NormaliserRegistry dispatches raw documents to normalisers by MIME type.
type NormaliserRegistry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewNormaliserRegistry creates a registry holding the given normalisers.
func NewNormaliserRegistry(normalisers ...driven.Normaliser) *NormaliserRegistry {
	r := &NormaliserRegistry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *NormaliserRegistry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, normaliser)
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *NormaliserRegistry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, mt := range n.SupportedMIMETypes() {
			seen[mt] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for mt := range seen {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Normalise extracts text with the best matching normaliser. Candidates
// matching the exact MIME type are tried by descending priority, then
// "type/*" wildcards. A candidate rejecting the content as unsupported
// passes it to the next one. Blank output is rejected.
func (r *NormaliserRegistry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := fingerprint.Canonical(raw.MIMEType)
	candidates := r.candidates(mimeType)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedFormat, mimeType)
	}

	var lastErr error
	for _, n := range candidates {
		result, err := n.Normalise(ctx, raw)
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(result.Document.Content) == "" {
			return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrUnsupportedFormat, raw.Filename)
		}
		return result, nil
	}
	return nil, lastErr
}

func (r *NormaliserRegistry) candidates(mimeType string) []driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wildcard := ""
	if major, _, ok := strings.Cut(mimeType, "/"); ok {
		wildcard = major + "/*"
	}

	var exact, wild []driven.Normaliser
	for _, n := range r.normalisers {
		isExact, isWild := false, false
		for _, mt := range n.SupportedMIMETypes() {
			isExact = isExact || mt == mimeType
			isWild = isWild || mt == wildcard
		}
		switch {
		case isExact:
			exact = append(exact, n)
		case isWild:
			wild = append(wild, n)
		}
	}

	byPriority := func(list []driven.Normaliser) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
	}
	byPriority(exact)
	byPriority(wild)
	return append(exact, wild...)
}
