package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger(t *testing.T) {
	t.Helper()
	writer.mu.Lock()
	writer.file = nil
	writer.buffer = nil
	writer.discard = false
	writer.mu.Unlock()
	t.Cleanup(func() {
		_ = Close()
		writer.mu.Lock()
		writer.buffer = nil
		writer.discard = false
		writer.mu.Unlock()
	})
}

func TestBufferedMessagesFlushToFile(t *testing.T) {
	resetLogger(t)

	Printf("buffered message %d", 42)

	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, SetFile(path))
	Println("direct message")
	require.NoError(t, Close())

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.Contains(t, string(data), "buffered message 42")
	assert.Contains(t, string(data), "direct message")
}

func TestEmptyPathDiscards(t *testing.T) {
	resetLogger(t)

	Printf("will be dropped")
	require.NoError(t, SetFile(""))

	writer.mu.Lock()
	assert.True(t, writer.discard)
	assert.Nil(t, writer.buffer)
	writer.mu.Unlock()

	// Further messages are discarded without error.
	Printf("also dropped")
}

func TestSetFileBadPath(t *testing.T) {
	resetLogger(t)

	err := SetFile(filepath.Join(t.TempDir(), "missing-dir", "debug.log"))
	require.Error(t, err)

	// Logging after a failed SetFile must not panic or grow the buffer.
	Printf("dropped")
	writer.mu.Lock()
	assert.True(t, writer.discard)
	writer.mu.Unlock()
}
