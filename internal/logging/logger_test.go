package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fractional-company/vaultctl/internal/domain/config"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(""))
}

func TestNewLogger_DebugForcesLevel(t *testing.T) {
	t.Setenv("VAULTCTL_LOG_LEVEL", "error")
	log := NewLogger(&config.RuntimeConfig{Debug: true})
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))

	log = NewLogger(&config.RuntimeConfig{})
	assert.False(t, log.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/deploy_components.go", shortPath("/home/dev/vaultctl/internal/usecase/deploy_components.go"))
	assert.Equal(t, "main.go", shortPath("/somewhere/else/main.go"))
}
