package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-mquic/pkg/lib/log"
)

func TestParseLevelConfig(t *testing.T) {
	cfg := DefaultConfig()
	ParseLevelConfig(cfg, "demuxer=debug, core/transport=warn ,error,bogus=nope")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SubsystemLevels["demuxer"])
	assert.Equal(t, slog.LevelWarn, cfg.SubsystemLevels["core/transport"])
	assert.NotContains(t, cfg.SubsystemLevels, "bogus")
}

func TestLevelForSubsystem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubsystemLevels["demuxer"] = slog.LevelDebug
	cfg.SubsystemLevels["core/session"] = slog.LevelError

	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("core/demuxer"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("core/session"))
	assert.Equal(t, slog.LevelInfo, cfg.LevelForSubsystem("core/muxer"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "muxer=debug,warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvAddSource, "true")

	cfg := ConfigFromEnv()
	assert.Equal(t, slog.LevelWarn, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SubsystemLevels["muxer"])
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}

func TestInstall_SubsystemLevels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		SetOutput(nil)
	})

	cfg := DefaultConfig()
	ParseLevelConfig(cfg, "demuxer=debug,warn")

	buf := &bytes.Buffer{}
	Install(cfg, buf)

	log.Logger("core/demuxer").Debug("解复用调试")
	log.Logger("core/muxer").Debug("复用调试")
	log.Logger("core/muxer").Warn("复用警告")

	out := buf.String()
	assert.Contains(t, out, "解复用调试")
	assert.NotContains(t, out, "msg=复用调试")
	assert.Contains(t, out, "复用警告")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "component=core/demuxer")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		SetOutput(nil)
	})

	first := &bytes.Buffer{}
	Install(DefaultConfig(), first)
	l := log.Logger("core/test")

	second := &bytes.Buffer{}
	SetOutput(second)
	l.Info("切换之后", "key", "value")

	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "切换之后")
	assert.Contains(t, second.String(), "key=value")
}

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Format = FormatJSON

	l := New(cfg, buf)
	l.Info("json 输出")
	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"ts":`)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
