// Package mcp provides an MCP (Model Context Protocol) server adapter for supportly.
// It lets AI assistants search and manage one organisation's knowledge base.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingTenant is returned when the server is built without a namespace.
	ErrMissingTenant = errors.New("mcp: tenant namespace is required")

	// ErrReadOnly is returned by write tools when no ingestion or lifecycle
	// service was provided.
	ErrReadOnly = errors.New("mcp: server is read-only")
)
