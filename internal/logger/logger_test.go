package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"ledgerbot/internal/config"
	"ledgerbot/internal/logger"
)

func TestNew_Level(t *testing.T) {
	l, err := logger.New(config.LogConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	l, err := logger.New(config.LogConfig{Level: "error", Format: "console"}, true)
	require.NoError(t, err)

	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logger.New(config.LogConfig{Level: "loud"}, false)
	assert.Error(t, err)
}
