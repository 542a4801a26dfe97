package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
)

// SearchInput is the input schema for the search_knowledge tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to search the knowledge base for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of entries to return (default 5, max 50)"`
}

// SearchOutput is the output schema for the search_knowledge tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single matching entry.
type SearchResultOutput struct {
	EntryID  string   `json:"entry_id"`
	Title    string   `json:"title"`
	Filename string   `json:"filename"`
	URL      string   `json:"url,omitempty"`
	Score    float64  `json:"score"`
	Snippets []string `json:"snippets"`
}

// ListEntriesInput is the input schema for the list_entries tool.
type ListEntriesInput struct{}

// ListEntriesOutput is the output schema for the list_entries tool.
type ListEntriesOutput struct {
	Entries []EntryOutput `json:"entries"`
	Count   int           `json:"count"`
}

// EntryOutput describes one knowledge base entry.
type EntryOutput struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Title     string `json:"title"`
	MIMEType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	Chunks    int    `json:"chunks"`
	Category  string `json:"category,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AddDocumentInput is the input schema for the add_document tool.
type AddDocumentInput struct {
	Filename string `json:"filename" jsonschema:"name of the document, its extension selects the format (e.g. faq.md)"`
	Content  string `json:"content" jsonschema:"the document text"`
	Category string `json:"category,omitempty" jsonschema:"optional label stored with the entry"`
	MIMEType string `json:"mime_type,omitempty" jsonschema:"optional MIME type overriding detection"`
}

// AddDocumentOutput is the output schema for the add_document tool.
type AddDocumentOutput struct {
	EntryID string `json:"entry_id"`
	URL     string `json:"url"`
	Created bool   `json:"created"`
}

// DeleteEntryInput is the input schema for the delete_entry tool.
type DeleteEntryInput struct {
	EntryID string `json:"entry_id" jsonschema:"ID of the entry to delete"`
}

// DeleteEntryOutput is the output schema for the delete_entry tool.
type DeleteEntryOutput struct {
	Deleted bool `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
// Write tools are only offered when their service is wired.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the organisation's knowledge base and return the most relevant entries with snippets",
	}, s.handleSearch)

	if s.ports.Lifecycle != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_entries",
			Description: "List the entries in the organisation's knowledge base, newest first",
		}, s.handleListEntries)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "delete_entry",
			Description: "Delete an entry and its indexed content from the knowledge base",
		}, s.handleDeleteEntry)
	}

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_document",
			Description: "Add a text document to the knowledge base; identical content is not added twice",
		}, s.handleAddDocument)
	}
}

// handleSearch handles the search_knowledge tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.Retrieve(ctx, s.ports.Tenant, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search: %w", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		entry := &results[i].Entry
		output.Results[i] = SearchResultOutput{
			EntryID:  entry.ID,
			Title:    entry.Title,
			Filename: entry.Key,
			URL:      results[i].URL,
			Score:    results[i].Score,
			Snippets: results[i].Snippets,
		}
	}

	return nil, output, nil
}

// handleListEntries handles the list_entries tool invocation.
func (s *Server) handleListEntries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListEntriesInput,
) (*mcp.CallToolResult, ListEntriesOutput, error) {
	entries, err := s.ports.Lifecycle.ListEntries(ctx, s.ports.Tenant)
	if err != nil {
		return nil, ListEntriesOutput{}, fmt.Errorf("list entries: %w", err)
	}

	output := ListEntriesOutput{
		Entries: make([]EntryOutput, len(entries)),
		Count:   len(entries),
	}
	for i := range entries {
		output.Entries[i] = entryOutput(&entries[i])
	}
	return nil, output, nil
}

// handleAddDocument handles the add_document tool invocation.
func (s *Server) handleAddDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddDocumentInput,
) (*mcp.CallToolResult, AddDocumentOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, AddDocumentOutput{}, ErrReadOnly
	}

	result, err := s.ports.Ingestion.AddDocument(ctx, s.ports.Tenant, driving.UploadRequest{
		Filename: input.Filename,
		MIMEType: input.MIMEType,
		Content:  []byte(input.Content),
		Category: input.Category,
	})
	if err != nil {
		return nil, AddDocumentOutput{}, fmt.Errorf("add document: %w", err)
	}

	return nil, AddDocumentOutput{
		EntryID: result.EntryID,
		URL:     result.URL,
		Created: result.Created,
	}, nil
}

// handleDeleteEntry handles the delete_entry tool invocation.
func (s *Server) handleDeleteEntry(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteEntryInput,
) (*mcp.CallToolResult, DeleteEntryOutput, error) {
	if s.ports.Lifecycle == nil {
		return nil, DeleteEntryOutput{}, ErrReadOnly
	}
	if input.EntryID == "" {
		return nil, DeleteEntryOutput{}, fmt.Errorf("%w: entry_id is required", domain.ErrInvalidInput)
	}

	if err := s.ports.Lifecycle.DeleteEntry(ctx, s.ports.Tenant, input.EntryID); err != nil {
		return nil, DeleteEntryOutput{}, fmt.Errorf("delete entry: %w", err)
	}
	return nil, DeleteEntryOutput{Deleted: true}, nil
}

func entryOutput(e *domain.Entry) EntryOutput {
	return EntryOutput{
		ID:        e.ID,
		Filename:  e.Key,
		Title:     e.Title,
		MIMEType:  e.MIMEType,
		Size:      e.Size,
		Chunks:    e.ChunkCount,
		Category:  e.Metadata[domain.MetaCategory],
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
