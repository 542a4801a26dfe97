package driving

import (
	"context"

	"github.com/all-black-493/supportly/internal/core/domain"
)

// UploadRequest is one document submitted for ingestion.
type UploadRequest struct {
	// Filename is the caller's name for the document. Required.
	Filename string

	// MIMEType overrides detection when set.
	MIMEType string

	// Content is the raw file bytes. Required.
	Content []byte

	// Category is an optional caller label stored in entry metadata.
	Category string
}

// IngestionService adds documents to a tenant's knowledge base.
type IngestionService interface {
	// AddDocument stores, extracts, embeds and indexes the upload.
	// Uploading content already present in the namespace returns the existing
	// entry with Created=false and does no further work.
	AddDocument(ctx context.Context, tenant domain.Tenant, req UploadRequest) (*domain.IngestResult, error)
}
