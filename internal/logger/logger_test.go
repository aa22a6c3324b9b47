package logger

import (
	"testing"

	"github.com/petsafe/petsafe-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildConfig(t *testing.T) {
	t.Run("production forces json", func(t *testing.T) {
		c := buildConfig(&config.LoggingConfig{Level: "debug", Format: "console"}, &config.AppConfig{Name: "PetSafe API", Environment: "production"})
		assert.Equal(t, "json", c.Encoding)
		assert.Equal(t, zapcore.DebugLevel, c.Level.Level())
		assert.Equal(t, "production", c.InitialFields["environment"])
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		c := buildConfig(&config.LoggingConfig{Level: "loud"}, &config.AppConfig{Environment: "development"})
		assert.Equal(t, "console", c.Encoding)
		assert.Equal(t, zapcore.InfoLevel, c.Level.Level())
	})
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json"}, &config.AppConfig{Name: "test", Environment: "test"})
	require.NoError(t, err)
	assert.NotNil(t, WithUser(WithRequest(l, "GET", "/health", "abc"), "u1", "person"))
}
