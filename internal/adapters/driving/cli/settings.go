package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/all-black-493/supportly/internal/adapters/driven/embedding"
	"github.com/all-black-493/supportly/internal/core/domain"
)

var (
	embeddingProvider string
	embeddingModel    string
	embeddingBaseURL  string
	embeddingAPIKey   string
	apiKeyToken       string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider and API keys.

Settings live in config.toml in the config directory. Any key can also be
set from the environment, e.g. SUPPORTLY_EMBEDDING_API_KEY.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used for indexing and queries.

Providers:
  hashing - Offline feature hashing, no setup required
  openai  - OpenAI or any server speaking its embeddings API (--base-url)

Changing provider, model or dimensions makes existing vectors incomparable;
re-add documents into a fresh data directory afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "apikey [org-id]",
	Short: "Create an API key for an organisation",
	Long: `Maps a bearer token to an organisation. Without --token a random token is
generated and printed once.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsAPIKey,
}

func init() {
	settingsEmbeddingCmd.Flags().StringVar(&embeddingProvider, "provider", "", "embedding provider (hashing, openai)")
	settingsEmbeddingCmd.Flags().StringVar(&embeddingModel, "model", "", "embedding model")
	settingsEmbeddingCmd.Flags().StringVar(&embeddingBaseURL, "base-url", "", "API base URL for OpenAI-compatible servers")
	settingsEmbeddingCmd.Flags().StringVar(&embeddingAPIKey, "api-key", "", "API key (prompted when omitted)")
	settingsAPIKeyCmd.Flags().StringVar(&apiKeyToken, "token", "", "token to register instead of a generated one")

	settingsCmd.AddCommand(settingsShowCmd, settingsEmbeddingCmd, settingsAPIKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	store, svc, err := loadSettings()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Printf("Config: %s\n\n", store.Path())

	cmd.Println("Server")
	cmd.Printf("  Address:      %s\n", settings.Server.Addr)
	cmd.Printf("  Base URL:     %s\n", settings.Server.BaseURL)
	cmd.Printf("  Data dir:     %s\n", resolveDataDir(settings))
	cmd.Println()

	cmd.Println("Embedding")
	cmd.Printf("  Provider:     %s (%s)\n", settings.Embedding.Provider, settings.Embedding.Provider.Description())
	if settings.Embedding.Provider == domain.EmbeddingProviderOpenAI {
		cmd.Printf("  Model:        %s\n", settings.Embedding.Model)
		if settings.Embedding.BaseURL != "" {
			cmd.Printf("  Base URL:     %s\n", settings.Embedding.BaseURL)
		}
		cmd.Printf("  API key:      %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Dimensions:   %d\n", settings.Embedding.Dimensions)
	cmd.Println()

	cmd.Println("Ingestion")
	cmd.Printf("  Chunk size:   %d (overlap %d)\n", settings.Chunker.Size, settings.Chunker.Overlap)
	cmd.Printf("  Max bytes:    %d\n", settings.Ingest.MaxBytes)
	cmd.Printf("  Retries:      %d (backoff %s)\n", settings.Ingest.MaxRetries, settings.Ingest.RetryBackoff)
	cmd.Println()

	cmd.Printf("API keys (%d)\n", len(settings.Auth.Keys))
	tokens := make([]string, 0, len(settings.Auth.Keys))
	for token := range settings.Auth.Keys {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		cmd.Printf("  %s -> %s\n", maskAPIKey(token), settings.Auth.Keys[token])
	}

	if err := svc.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	_, svc, err := loadSettings()
	if err != nil {
		return err
	}

	provider := domain.EmbeddingProvider(embeddingProvider)
	if embeddingProvider == "" {
		return errors.New("--provider is required (hashing, openai)")
	}
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q", embeddingProvider)
	}

	if embeddingBaseURL != "" {
		settings, err := svc.Get()
		if err != nil {
			return err
		}
		settings.Embedding.BaseURL = strings.TrimRight(embeddingBaseURL, "/")
		if err := svc.Save(settings); err != nil {
			return fmt.Errorf("failed to save base URL: %w", err)
		}
	}

	apiKey := embeddingAPIKey
	if provider.RequiresAPIKey() && apiKey == "" && embeddingBaseURL == "" {
		cmd.Print("API key: ")
		apiKey = readPassword()
		cmd.Println()
	}

	if err := svc.SetEmbeddingProvider(provider, embeddingModel, apiKey); err != nil {
		return fmt.Errorf("failed to save embedding settings: %w", err)
	}

	settings, err := svc.Get()
	if err != nil {
		return err
	}

	cmd.Print("Validating connection... ")
	svcEmbed, err := embedding.CreateAndValidateEmbeddingService(cmdContext(cmd), settings.Embedding)
	if err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	defer svcEmbed.Close() //nolint:errcheck
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s, %d dimensions)\n",
		provider.Description(), svcEmbed.ModelName(), svcEmbed.Dimensions())
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, args []string) error {
	_, svc, err := loadSettings()
	if err != nil {
		return err
	}

	token := apiKeyToken
	generated := token == ""
	if generated {
		token = "sk-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	if err := svc.SetAPIKey(token, args[0]); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	if generated {
		cmd.Printf("Created API key for %s:\n\n  %s\n\nStore it now; it is not shown again in full.\n", args[0], token)
		return nil
	}
	cmd.Printf("API key %s now maps to %s\n", maskAPIKey(token), args[0])
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
