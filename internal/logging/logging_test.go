package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("VOICEICE_LOG_LEVEL", "")
	os.Unsetenv("VOICEICE_LOG_LEVEL")

	e, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", e.Level)
	assert.Empty(t, e.File)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("VOICEICE_LOG_LEVEL", "debug")
	t.Setenv("VOICEICE_LOG_TIMESTAMP", "true")

	e, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", e.Level)
	assert.True(t, e.Timestamp)
}

func TestFromEnvRejectsBadBool(t *testing.T) {
	t.Setenv("VOICEICE_LOG_TIMESTAMP", "sometimes")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, closer, err := New(&buf, Options{Level: "warn"})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "voiceice.log")

	logger, closer, err := New(nil, Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(&bytes.Buffer{}, Options{Level: "chatty"})
	assert.Error(t, err)
}
