package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingProvider_IsValid(t *testing.T) {
	assert.True(t, EmbeddingProviderOpenAI.IsValid())
	assert.True(t, EmbeddingProviderHashing.IsValid())
	assert.False(t, EmbeddingProvider("").IsValid())
	assert.False(t, EmbeddingProvider("ollama").IsValid())
}

func TestEmbeddingProvider_Description(t *testing.T) {
	assert.Equal(t, "OpenAI-compatible API", EmbeddingProviderOpenAI.Description())
	assert.Equal(t, unknownDescription, EmbeddingProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"hashing needs nothing", EmbeddingSettings{Provider: EmbeddingProviderHashing}, true},
		{"openai without key", EmbeddingSettings{Provider: EmbeddingProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: EmbeddingProviderOpenAI, APIKey: "sk"}, true},
		{"openai compatible server", EmbeddingSettings{Provider: EmbeddingProviderOpenAI, BaseURL: "http://localhost:11434/v1"}, true},
		{"unknown provider", EmbeddingSettings{Provider: "x", APIKey: "sk"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, EmbeddingProviderHashing, s.Embedding.Provider)
	assert.Equal(t, 1000, s.Chunker.Size)
	assert.Equal(t, 200, s.Chunker.Overlap)
	assert.Positive(t, s.Ingest.MaxBytes)
	assert.NotNil(t, s.Auth.Keys)
}
