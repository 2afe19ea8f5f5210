package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsoleLogger_LevelAndPrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "[TEST]", LogLevelWarn)

	l.Info("hidden %d", 1)
	require.Empty(t, buf.String())

	l.Warn("shown %d", 2)
	require.Contains(t, buf.String(), "[TEST] shown 2")
	require.Contains(t, buf.String(), "level=warning")
}

func TestConsoleLogger_WithField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, "", LogLevelDebug).With("request_id", "abc")
	l.Debug("hello")
	require.Contains(t, buf.String(), "request_id=abc")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LogLevelWarn, ParseLevel("warning"))
	require.Equal(t, LogLevelInfo, ParseLevel(""))
	require.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}
