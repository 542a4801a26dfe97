package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap them with fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entry with the same content hash already
	// exists in the namespace. Stores return it together with the existing entry.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller has no resolvable tenant, or is not
	// the owner of the entry it is acting on.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedFormat indicates no text could be extracted from the
	// uploaded content.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrTransientIO indicates a collaborator (blob store, embedding model,
	// index) failed in a way that may succeed on retry.
	ErrTransientIO = errors.New("transient I/O failure")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
