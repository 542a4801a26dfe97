package domain

// RetrievalResult is one entry matched by a query.
type RetrievalResult struct {
	// Entry is the matched entry.
	Entry Entry

	// Score is the best chunk similarity for this entry.
	Score float64

	// Snippets are the best-scoring chunk texts, highest first.
	Snippets []string

	// URL resolves to the original uploaded file.
	URL string
}

// IngestResult is the outcome of an upload.
type IngestResult struct {
	// URL resolves to the stored blob.
	URL string

	// EntryID identifies the entry holding this content.
	EntryID string

	// Created is false when the content was already present.
	Created bool
}
