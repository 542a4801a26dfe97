package domain

import "time"

// Metadata keys carried by every Entry.
const (
	MetaStorageID  = "storageId"
	MetaUploadedBy = "uploadedBy"
	MetaFilename   = "filename"
	MetaCategory   = "category"
)

// Entry is one document in a tenant's knowledge base.
// Entries are created once per (namespace, content hash) and never mutated.
type Entry struct {
	// ID is generated at ingestion time.
	ID string

	// Namespace is the owning tenant. Immutable.
	Namespace Namespace

	// Key is the caller-supplied logical name, usually the filename. Not unique.
	Key string

	// Title is derived from the extracted text, falling back to Key.
	Title string

	// ContentHash is the lowercase hex SHA-256 of the uploaded bytes.
	ContentHash string

	// MIMEType is the canonical content type used for extraction.
	MIMEType string

	// Size is the uploaded byte length.
	Size int64

	// ChunkCount is the number of chunks indexed for this entry.
	ChunkCount int

	// Metadata holds storageId, uploadedBy, filename and optional category.
	Metadata map[string]string

	// CreatedAt is when the entry was committed.
	CreatedAt time.Time
}

// StorageID returns the blob identifier, or "" if none was recorded.
func (e *Entry) StorageID() string {
	return e.Metadata[MetaStorageID]
}

// UploadedBy returns the namespace recorded as the uploader.
func (e *Entry) UploadedBy() string {
	return e.Metadata[MetaUploadedBy]
}

// Chunk is an embedded slice of an Entry's extracted text.
// Chunks are created and destroyed in bulk together with their Entry.
type Chunk struct {
	// ID is "<entryId>-<position>" and stable for a given text.
	ID string

	// EntryID links to the parent Entry.
	EntryID string

	// Namespace always equals the parent Entry's namespace.
	Namespace Namespace

	// Content is the chunk text.
	Content string

	// Position is the ordinal position within the entry.
	Position int

	// Offset is the rune offset of Content in the extracted text.
	Offset int

	// Embedding is the vector representation.
	Embedding []float32
}

// ChunkHit is a chunk returned by a similarity query.
type ChunkHit struct {
	EntryID  string
	ChunkID  string
	Content  string
	Position int
	Score    float64
}
