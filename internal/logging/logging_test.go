package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/codenotes/internal/logging"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		expected    slog.Level
		expectError bool
	}{
		"error level":      {input: "error", expected: slog.LevelError},
		"warn level":       {input: "warn", expected: slog.LevelWarn},
		"warning level":    {input: "warning", expected: slog.LevelWarn},
		"info level":       {input: "info", expected: slog.LevelInfo},
		"empty is info":    {input: "", expected: slog.LevelInfo},
		"debug level":      {input: "debug", expected: slog.LevelDebug},
		"case insensitive": {input: "DEBUG", expected: slog.LevelDebug},
		"unknown level":    {input: "loud", expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := logging.GetLevel(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, logging.ErrUnknownLogLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestGetFormat(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"text", "JSON", "logfmt", ""} {
		_, err := logging.GetFormat(in)
		require.NoError(t, err, in)
	}
	_, err := logging.GetFormat("xml")
	require.ErrorIs(t, err, logging.ErrUnknownLogFormat)
}

func TestNewLoggerJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := &logging.Config{Format: "json"}
	logger, err := cfg.NewLogger(&buf, "debug", "text")
	require.NoError(t, err)

	logger.Debug("annotated", slog.Int("blocks", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "annotated", entry["msg"])
	assert.InDelta(t, 2, entry["blocks"], 0)
}

func TestNewLoggerFlagOverridesFallback(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cfg := &logging.Config{Level: "error"}
	logger, err := cfg.NewLogger(&buf, "debug", "text")
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.NotContains(t, buf.String(), "time=")
}

func TestNewLoggerInvalid(t *testing.T) {
	t.Parallel()

	_, err := (&logging.Config{}).NewLogger(&bytes.Buffer{}, "loud", "text")
	require.Error(t, err)
}

func TestRegisterFlagsAndCompletions(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test"}
	cfg := &logging.Config{}
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

	require.NoError(t, cmd.Flags().Parse([]string{"--log-level", "debug", "--log-format", "json"}))
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}
