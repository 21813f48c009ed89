package logger

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg := ParseConfig("swarm=debug, ping=warn ,error,bogus=loud", "JSON", "true")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelFor("swarm"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelFor("ping"))
	assert.Equal(t, slog.LevelError, cfg.LevelFor("upgrader"))
	assert.NotContains(t, cfg.Subsystems, "bogus")
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg := ParseConfig("", "", "")

	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Empty(t, cfg.Subsystems)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.AddSource)
}

func TestSetOutput_AppliesToExistingLogger(t *testing.T) {
	log := Logger("logger-test")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log.Info("after switch", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "after switch")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "subsystem=logger-test")
}

func TestSetLevel_FollowsDerivedLoggers(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log := Logger("logger-level-test")
	derived := log.With("conn", "c1")

	SetLevel("logger-level-test", slog.LevelError)
	derived.Info("hidden")
	require.Empty(t, buf.String())

	SetLevel("logger-level-test", slog.LevelDebug)
	derived.Debug("shown")
	assert.Contains(t, buf.String(), "conn=c1")
}

func TestLoggerIsCached(t *testing.T) {
	assert.Same(t, Logger("cached"), Logger("cached"))
}
