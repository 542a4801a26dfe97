package domain

// RawDocument is uploaded content before text extraction.
type RawDocument struct {
	// Filename is the caller-supplied name, used for titles and extension hints.
	Filename string

	// MIMEType is the canonical content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains upload-specific key-value pairs.
	Metadata map[string]any
}

// Document is the text extracted from a RawDocument.
type Document struct {
	// ID is the entry the text belongs to. Chunk IDs derive from it.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains extractor-specific key-value pairs.
	Metadata map[string]any
}
