package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		logLevel string
	}{
		{"開発環境", "development", ""},
		{"本番環境", "production", ""},
		{"LOG_LEVEL指定", "development", "debug"},
		{"不正なLOG_LEVELは無視される", "production", "invalid_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)

			l := NewLogger(tt.env)

			require.NotNil(t, l)
			assert.NotPanics(t, func() { l.Info("test message") })
		})
	}
}

func TestNewLogger_LogLevelFiltersDebug(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	l := NewLogger("production")

	assert.Nil(t, l.Check(zap.InfoLevel, "info"))
	assert.NotNil(t, l.Check(zap.WarnLevel, "warn"))
}

func TestSetAndHelpers(t *testing.T) {
	original := Get()
	defer Set(original)

	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))

	Debug("debug message")
	Info("info message", zap.String("event_id", "evt-1"))
	Warn("warn message")
	Error("error message", zap.Int("status", 500))
	With(zap.String("component", "worker")).Info("with message")

	require.Equal(t, 5, logs.Len())
	entries := logs.All()
	assert.Equal(t, "info message", entries[1].Message)
	assert.Equal(t, "evt-1", entries[1].ContextMap()["event_id"])
	assert.Equal(t, "worker", entries[4].ContextMap()["component"])
	assert.NotPanics(t, func() { _ = Sync() })
}

func TestContextLogger(t *testing.T) {
	t.Run("コンテキストにロガーがなければグローバル", func(t *testing.T) {
		assert.Equal(t, Get(), FromContext(context.Background()))
	})

	t.Run("コンテキストのロガーを優先する", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		reqLogger := zap.New(core).With(zap.String("request_id", "req-1"))

		ctx := IntoContext(context.Background(), reqLogger)
		FromContext(ctx).Info("scoped")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
	})
}
