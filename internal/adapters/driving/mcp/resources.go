package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for knowledge base resources.
	uriScheme = "supportly://"
)

// registerResources registers resource handlers when the lifecycle
// service is available.
func (s *Server) registerResources() {
	if s.ports.Lifecycle == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "entries",
		Name:        "entries",
		Description: "All entries in the organisation's knowledge base",
		MIMEType:    "application/json",
	}, s.handleEntriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "entries/{entryId}",
		Name:        "entry",
		Description: "Metadata of a single knowledge base entry",
		MIMEType:    "application/json",
	}, s.handleEntryResource)
}

// handleEntriesResource returns every entry of the tenant.
func (s *Server) handleEntriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.Lifecycle.ListEntries(ctx, s.ports.Tenant)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	infos := make([]EntryOutput, len(entries))
	for i := range entries {
		infos[i] = entryOutput(&entries[i])
	}
	return jsonResource(req.Params.URI, infos)
}

// handleEntryResource returns one entry.
func (s *Server) handleEntryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract entryId from URI: supportly://entries/{entryId}
	entryID := extractEntryID(req.Params.URI)
	if entryID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entry, err := s.ports.Lifecycle.GetEntry(ctx, s.ports.Tenant, entryID)
	if err != nil {
		// Entries of other tenants are reported as missing.
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, entryOutput(entry))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEntryID extracts the entry ID from a URI like supportly://entries/{entryId}.
func extractEntryID(uri string) string {
	const prefix = uriScheme + "entries/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
