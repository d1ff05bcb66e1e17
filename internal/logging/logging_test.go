package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Verbose(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	logger, err := NewLogger(true, "json")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_EnvLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")

	logger, err := NewLogger(false, "")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	logger, err := NewLogger(false, "console")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
