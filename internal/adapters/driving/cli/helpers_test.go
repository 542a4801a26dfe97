package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/all-black-493/supportly/internal/core/services"
)

// runCLI executes the root command against a throwaway config and data
// directory pair and returns everything written to stdout and stderr.
func runCLI(t *testing.T, env *cliEnv, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config=" + env.configDir, "--data-dir=" + env.dataDir}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

type cliEnv struct {
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	root := t.TempDir()
	return &cliEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// writeFile creates a file in a temp directory and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// resetFlags restores package-level flag values, which outlive a single
// Execute call.
func resetFlags() {
	configDir, dataDir, verbose = "", "", false
	entryNamespace, entryCategory, entryMIMEType, entryJSON = "", "", "", false
	queryNamespace, queryTopK, queryJSON = "", services.DefaultTopK, false
	reconcileNamespace, reconcileAll = "", false
	embeddingProvider, embeddingModel, embeddingBaseURL, embeddingAPIKey = "", "", "", ""
	apiKeyToken = ""
	serveAddr, serveEphemeral, serveNoWatch = "", false, false
	mcpNamespace, mcpPort, mcpReadOnly, mcpEphemeral = "", 0, false, false
}
