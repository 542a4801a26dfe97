package domain

import "time"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderOpenAI is the OpenAI API or any compatible server.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderHashing is the offline feature-hashing embedder.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderOpenAI, EmbeddingProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderOpenAI:
		return "OpenAI-compatible API"
	case EmbeddingProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Addr            string
	BaseURL         string
	AllowAllOrigins bool
}

// StorageSettings configures where data lives.
type StorageSettings struct {
	DataDir string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider          EmbeddingProvider
	Model             string
	BaseURL           string
	APIKey            string
	Dimensions        int
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" && e.BaseURL == "" {
		return false
	}
	return true
}

// ChunkerSettings controls how extracted text is split.
type ChunkerSettings struct {
	Size    int
	Overlap int
}

// IngestSettings bounds uploads and retries.
type IngestSettings struct {
	MaxBytes     int64
	MaxRetries   int
	RetryBackoff time.Duration
}

// AuthSettings maps bearer tokens to organisation IDs.
type AuthSettings struct {
	Keys map[string]string
}

// AppSettings is the full runtime configuration.
type AppSettings struct {
	Server    ServerSettings
	Storage   StorageSettings
	Embedding EmbeddingSettings
	Chunker   ChunkerSettings
	Ingest    IngestSettings
	Auth      AuthSettings
}

// DefaultAppSettings returns settings that work offline out of the box.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageSettings{
			DataDir: "",
		},
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingProviderHashing,
			Model:      "text-embedding-3-small",
			Dimensions: 256,
		},
		Chunker: ChunkerSettings{
			Size:    1000,
			Overlap: 200,
		},
		Ingest: IngestSettings{
			MaxBytes:     20 << 20,
			MaxRetries:   3,
			RetryBackoff: 200 * time.Millisecond,
		},
		Auth: AuthSettings{
			Keys: map[string]string{},
		},
	}
}
