package logutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flashbots/backdrop/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("prod", func(t *testing.T) {
		l, err := NewLogger(&config.Log{Level: "debug", Mode: "prod"}, "test")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	})

	t.Run("dev", func(t *testing.T) {
		l, err := NewLogger(&config.Log{Level: "warn", Mode: "DEV"}, "test")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zap.InfoLevel))
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := NewLogger(&config.Log{Level: "info", Mode: "verbose"}, "test")
		assert.ErrorIs(t, err, ErrLoggerInvalidMode)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLogger(&config.Log{Level: "loud", Mode: "prod"}, "test")
		assert.ErrorIs(t, err, ErrLoggerInvalidLevel)
	})
}

func TestLoggerFromContext(t *testing.T) {
	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)
	assert.Same(t, l, LoggerFromContext(ctx))
	assert.Same(t, zap.L(), LoggerFromContext(context.Background()))
}

func TestHttpServerErrorLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := NewHttpServerErrorLogger(zap.New(core))

	l.Printf("http: TLS handshake error from %s: EOF\n", "10.0.0.1:5555")

	entries := logs.TakeAll()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "HTTP server encountered an error", entries[0].Message)
		assert.Equal(t, "http: TLS handshake error from 10.0.0.1:5555: EOF", entries[0].ContextMap()["error"])
	}
}
