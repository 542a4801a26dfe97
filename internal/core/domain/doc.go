// Package domain defines the core business entities for Supportly.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entry: A document stored in a tenant's knowledge base
//   - Chunk: An embedded slice of an Entry's extracted text
//   - Namespace / Tenant / Identity: Who owns and who asks
//   - RawDocument: Uploaded bytes before text extraction
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
