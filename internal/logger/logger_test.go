package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestRedactsSecrets(t *testing.T) {
	l, logs := observed()
	l.Info("provider ready", "provider", "anthropic", "api_key", "sk-123", "input_tokens", 42)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "anthropic", fields["provider"])
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.EqualValues(t, 42, fields["input_tokens"])
}

func TestWithCarriesFields(t *testing.T) {
	l, logs := observed()
	l.With("component", "replay").Warn("snapshot skipped", "reason", "version")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "snapshot skipped", entry.Message)
	assert.Equal(t, "replay", entry.ContextMap()["component"])
}

func TestOddKeyValues(t *testing.T) {
	assert.Equal(t, []any{"a", 1, "dangling"}, sanitizeKVs([]any{"a", 1, "dangling"}))
	assert.Empty(t, sanitizeKVs(nil))
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet"} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Debug("hello")
	}
	Nop().Error("discarded")
}
