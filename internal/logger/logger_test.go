package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, isVerbose bool) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	SetVerbose(isVerbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("chunked %d pieces", 3)

	assert.Contains(t, buf.String(), "[DEBUG] chunked 3 pieces")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestSection_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Section("INGEST")

	assert.Equal(t, "\n=== INGEST ===\n", buf.String())
}

func TestLevels_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)

	Info("started on %s", ":8080")
	Warn("ownership mismatch")
	Error("boom: %v", "disk full")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[INFO] started on :8080")
	assert.Contains(t, lines[1], "[WARN] ownership mismatch")
	assert.Contains(t, lines[2], "[ERROR] boom: disk full")
}

func TestTimestampPrefix(t *testing.T) {
	buf := capture(t, false)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	Info("hello")

	assert.Equal(t, "2026-01-02T03:04:05Z [INFO] hello\n", buf.String())
}

func TestOutput(t *testing.T) {
	buf := capture(t, false)

	assert.Same(t, buf, Output())
}
