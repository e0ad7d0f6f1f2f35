package slogx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStampsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Service: "contacts-auth",
		Version: "test",
		Env:     "prod",
		Level:   "info",
		Output:  &buf,
	})

	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "contacts-auth", record["service"])
	require.Equal(t, "test", record["version"])
	require.Equal(t, "hello", record["msg"])
}

func TestNewHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})

	logger.Info("dropped")
	require.Zero(t, buf.Len())

	logger.Warn("kept")
	require.NotZero(t, buf.Len())
}

func TestLevelParsing(t *testing.T) {
	require.Equal(t, slog.LevelDebug, Level("debug"))
	require.Equal(t, slog.LevelWarn, Level("WARNING"))
	require.Equal(t, slog.LevelError, Level("error"))
	require.Equal(t, slog.LevelInfo, Level("nonsense"))
}
