package app

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "state", "tui.log")
	closer, err := SetupLogging(path, "debug")
	require.NoError(t, err)

	slog.Debug("items loaded", "count", 2)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "items loaded", rec["msg"])
	assert.Equal(t, AppName, rec["app"])
	assert.Equal(t, float64(2), rec["count"])
}

func TestSetupLogging_BadLevel(t *testing.T) {
	_, err := SetupLogging(filepath.Join(t.TempDir(), "tui.log"), "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `log level "loud"`)
}
