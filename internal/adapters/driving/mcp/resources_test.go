package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/core/domain"
)

func TestExtractEntryID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid entry URI", uri: "supportly://entries/entry-456", expected: "entry-456"},
		{name: "invalid prefix", uri: "file://entries/entry-456", expected: ""},
		{name: "nested path", uri: "supportly://entries/a/b", expected: ""},
		{name: "list URI", uri: "supportly://entries", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractEntryID(tt.uri))
		})
	}
}

func createReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleEntriesResource(t *testing.T) {
	lifecycle := &mockLifecycleService{entries: []domain.Entry{
		{ID: "e1", Key: "a.md"},
		{ID: "e2", Key: "b.txt"},
	}}
	server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Lifecycle: lifecycle})

	result, err := server.handleEntriesResource(context.Background(), createReadResourceRequest("supportly://entries"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var entries []EntryOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "b.txt", entries[1].Filename)
}

func TestServer_handleEntryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns entry", func(t *testing.T) {
		lifecycle := &mockLifecycleService{entry: &domain.Entry{ID: "e1", Title: "Refunds"}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Lifecycle: lifecycle})

		result, err := server.handleEntryResource(ctx, createReadResourceRequest("supportly://entries/e1"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"title": "Refunds"`)
	})

	t.Run("unauthorized is reported as not found", func(t *testing.T) {
		lifecycle := &mockLifecycleService{err: domain.ErrUnauthorized}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Lifecycle: lifecycle})

		_, err := server.handleEntryResource(ctx, createReadResourceRequest("supportly://entries/e1"))
		assert.Error(t, err)
	})

	t.Run("malformed URI", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Lifecycle: &mockLifecycleService{}})

		_, err := server.handleEntryResource(ctx, createReadResourceRequest("supportly://other/e1"))
		assert.Error(t, err)
	})
}
