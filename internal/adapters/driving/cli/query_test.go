package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCmd_Flags(t *testing.T) {
	topK := queryCmd.Flags().Lookup("top-k")
	require.NotNil(t, topK)
	assert.Equal(t, "k", topK.Shorthand)
	assert.Equal(t, "5", topK.DefValue)

	ns := queryCmd.Flags().Lookup("namespace")
	require.NotNil(t, ns)
	assert.Equal(t, "n", ns.Shorthand)
}

func TestQueryCmd_RequiresText(t *testing.T) {
	env := newCLIEnv(t)

	_, err := runCLI(t, env, "query", "-n", "org_A")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestQueryCmd_RanksAndIsolates(t *testing.T) {
	env := newCLIEnv(t)
	refunds := writeFile(t, "refunds.txt", "Refunds are processed within five business days of the return.")
	shipping := writeFile(t, "shipping.txt", "Orders ship from the warehouse by courier every weekday.")

	out, err := runCLI(t, env, "entry", "add", "-n", "org_A", refunds)
	require.NoError(t, err)
	_, refundsID := addedID(t, out)
	_, err = runCLI(t, env, "entry", "add", "-n", "org_A", shipping)
	require.NoError(t, err)

	out, err = runCLI(t, env, "query", "-n", "org_A", "refunds", "processed", "business", "days")
	require.NoError(t, err)
	require.Contains(t, out, "Results:")
	first := out[strings.Index(out, "Entry: "):]
	assert.True(t, strings.HasPrefix(first, "Entry: "+refundsID), "expected refunds first:\n%s", out)
	assert.Contains(t, out, "> Refunds are processed")

	out, err = runCLI(t, env, "query", "-n", "org_B", "refunds")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestQueryCmd_TopKIsClamped(t *testing.T) {
	env := newCLIEnv(t)

	out, err := runCLI(t, env, "query", "-n", "org_A", "-k", "500", "anything")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"short", "hello world", 20, "hello world"},
		{"collapses whitespace", "a\n\tb   c", 20, "a b c"},
		{"truncates", "abcdefghij", 5, "abcd…"},
		{"counts runes", "ñññññññ", 4, "ñññ…"},
		{"exact length", "abcde", 5, "abcde"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, oneLine(tt.input, tt.limit))
		})
	}
}
