package clientlog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "warn"))

	logger.Info("quiet")
	logger.Warn("save failed", "date", "2024-05-01")

	out := buf.String()
	require.NotContains(t, out, "quiet")
	require.Contains(t, out, "save failed")
	require.Contains(t, out, "2024-05-01")
}

func TestHandlerDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "loud"))
	logger.Debug("hidden")
	logger.Info("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.log")
	logger, closer, err := New(Config{Path: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}
