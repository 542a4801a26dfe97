// Package embedding builds the configured embedding service.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/all-black-493/supportly/internal/adapters/driven/embedding/hashing"
	"github.com/all-black-493/supportly/internal/adapters/driven/embedding/openai"
	"github.com/all-black-493/supportly/internal/adapters/driven/embedding/ratelimit"
	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service named by settings,
// rate limited when RequestsPerSecond is set.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.EmbeddingProviderHashing:
		svc = hashing.New(settings.Dimensions)

	case domain.EmbeddingProviderOpenAI:
		oa, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		svc = oa

	default:
		return nil, fmt.Errorf("%w: unsupported provider %s", domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	burst := int(settings.RequestsPerSecond)
	return ratelimit.Wrap(svc, settings.RequestsPerSecond, burst), nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}
