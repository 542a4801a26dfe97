// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EntryStore: Entry persistence with per-namespace hash uniqueness
//   - ChunkIndex: Namespace-partitioned vector storage and search
//   - BlobStore: Original file bytes, addressed by storage ID
//   - EmbeddingService: Turns text into vectors
//   - Normaliser / NormaliserRegistry: Text extraction by MIME type
//   - PostProcessor: Chunking of extracted text
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
