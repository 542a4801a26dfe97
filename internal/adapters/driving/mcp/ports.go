package mcp

import (
	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers knowledge base queries.
	Retrieval driving.RetrievalService

	// Ingestion adds documents. Optional.
	Ingestion driving.IngestionService

	// Lifecycle lists and deletes entries. Optional.
	Lifecycle driving.LifecycleService

	// Tenant is the organisation every tool call acts as.
	Tenant domain.Tenant
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if !p.Tenant.Resolved() {
		return ErrMissingTenant
	}
	return p.Tenant.Namespace.Validate()
}
