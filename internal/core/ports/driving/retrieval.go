package driving

import (
	"context"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// RetrievalService answers semantic queries against one namespace.
type RetrievalService interface {
	// Retrieve returns up to topK entries ranked by relevance to query.
	// A topK of zero or less selects the default.
	Retrieve(ctx context.Context, tenant domain.Tenant, query string, topK int) ([]domain.RetrievalResult, error)
}
