package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerAddr       = "server.addr"
	keyServerBaseURL    = "server.base_url"
	keyServerAllowAll   = "server.allow_all_origins"
	keyStorageDataDir   = "storage.data_dir"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDims        = "embedding.dimensions"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyChunkerSize      = "chunker.size"
	keyChunkerOverlap   = "chunker.overlap"
	keyIngestMaxBytes   = "ingest.max_bytes"
	keyIngestMaxRetries = "ingest.max_retries"
	keyIngestBackoffMS  = "ingest.retry_backoff_ms"
	keyAuthKeys         = "auth.keys"
)

// SettingsService reads and writes AppSettings through a ConfigStore.
// Values are read on every call, so a reloaded config file takes effect
// without restarting.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			Addr:            s.getString(keyServerAddr, defaults.Server.Addr),
			BaseURL:         strings.TrimRight(s.getString(keyServerBaseURL, defaults.Server.BaseURL), "/"),
			AllowAllOrigins: s.getBool(keyServerAllowAll, defaults.Server.AllowAllOrigins),
		},
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyStorageDataDir, defaults.Storage.DataDir),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty means the public API
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
		},
		Chunker: domain.ChunkerSettings{
			Size:    s.getInt(keyChunkerSize, defaults.Chunker.Size),
			Overlap: s.getInt(keyChunkerOverlap, defaults.Chunker.Overlap),
		},
		Ingest: domain.IngestSettings{
			MaxBytes:     int64(s.getInt(keyIngestMaxBytes, int(defaults.Ingest.MaxBytes))),
			MaxRetries:   s.getInt(keyIngestMaxRetries, defaults.Ingest.MaxRetries),
			RetryBackoff: time.Duration(s.getInt(keyIngestBackoffMS, int(defaults.Ingest.RetryBackoff/time.Millisecond))) * time.Millisecond,
		},
		Auth: domain.AuthSettings{
			Keys: s.authKeys(),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyServerAddr, settings.Server.Addr},
		{keyServerBaseURL, settings.Server.BaseURL},
		{keyServerAllowAll, settings.Server.AllowAllOrigins},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyChunkerSize, settings.Chunker.Size},
		{keyChunkerOverlap, settings.Chunker.Overlap},
		{keyIngestMaxBytes, settings.Ingest.MaxBytes},
		{keyIngestMaxRetries, settings.Ingest.MaxRetries},
		{keyIngestBackoffMS, settings.Ingest.RetryBackoff.Milliseconds()},
		{keyAuthKeys, encodeAuthKeys(settings.Auth.Keys)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// A custom base URL (local OpenAI-compatible server) may not need a key.
	if provider.RequiresAPIKey() && apiKey == "" && settings.Embedding.BaseURL == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetAPIKey maps a bearer token to an organisation, replacing any previous mapping.
func (s *SettingsService) SetAPIKey(token, orgID string) error {
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, "=,") {
		return fmt.Errorf("%w: token must be non-empty and contain no '=' or ','", domain.ErrInvalidInput)
	}
	if err := domain.Namespace(orgID).Validate(); err != nil {
		return err
	}

	keys := s.authKeys()
	keys[token] = orgID
	return s.configStore.Set(keyAuthKeys, encodeAuthKeys(keys))
}

// ResolveAPIKey returns the organisation for a bearer token.
func (s *SettingsService) ResolveAPIKey(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	org, ok := s.authKeys()[token]
	return org, ok
}

// Validate checks the settings can start the service.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Embedding.Dimensions < 0 {
		return fmt.Errorf("%w: embedding.dimensions must not be negative", domain.ErrInvalidInput)
	}
	if settings.Chunker.Size <= 0 || settings.Chunker.Overlap < 0 || settings.Chunker.Overlap >= settings.Chunker.Size {
		return fmt.Errorf("%w: chunker.overlap must be in [0, chunker.size)", domain.ErrInvalidInput)
	}
	if settings.Ingest.MaxBytes <= 0 {
		return fmt.Errorf("%w: ingest.max_bytes must be positive", domain.ErrInvalidInput)
	}
	if settings.Ingest.MaxRetries < 0 {
		return fmt.Errorf("%w: ingest.max_retries must not be negative", domain.ErrInvalidInput)
	}
	if u, err := url.Parse(settings.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server.base_url %q is not an absolute URL", domain.ErrInvalidInput, settings.Server.BaseURL)
	}
	for token, org := range settings.Auth.Keys {
		if err := domain.Namespace(org).Validate(); err != nil {
			return fmt.Errorf("auth key %s...: %w", redact(token), err)
		}
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// authKeys parses "token=org" entries. Malformed entries are ignored.
func (s *SettingsService) authKeys() map[string]string {
	keys := make(map[string]string)
	for _, entry := range s.configStore.GetStringSlice(keyAuthKeys) {
		token, org, ok := strings.Cut(entry, "=")
		token, org = strings.TrimSpace(token), strings.TrimSpace(org)
		if !ok || token == "" || org == "" {
			continue
		}
		keys[token] = org
	}
	return keys
}

func encodeAuthKeys(keys map[string]string) []string {
	out := make([]string, 0, len(keys))
	for token, org := range keys {
		out = append(out, token+"="+org)
	}
	sort.Strings(out)
	return out
}

func redact(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4]
}
