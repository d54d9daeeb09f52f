package common

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, *pflag.FlagSet, error) {
	t.Helper()
	t.Setenv("PERPLEXITY_API_KEY", "")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	cfg, err := LoadConfig(fs, args)
	return cfg, fs, err
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, _, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "sonar", cfg.AI.Model)
	assert.Equal(t, "https://api.perplexity.ai", cfg.AI.BaseURL)
	assert.Equal(t, 500, cfg.AI.MaxTokens)
	assert.Equal(t, "deu", cfg.OCR.Language)
	assert.Equal(t, 5, cfg.Extract.PDFMaxPages)
	assert.Equal(t, 50, cfg.Extract.MinNativeChars)
	assert.Equal(t, 10, cfg.Extract.MinTextChars)
	assert.False(t, cfg.Batch.Execute)
	assert.True(t, cfg.Batch.SkipHidden)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.False(t, cfg.AIReady())
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("DOCNAMER_AI_MODEL", "sonar-pro")
	t.Setenv("DOCNAMER_OCR_LANGUAGE", "deu+eng")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-0123456789")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg, err := LoadConfig(fs, []string{"--ocr-lang", "eng", "-x", "-w", "4", "scan", "a.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "sonar-pro", cfg.AI.Model, "env applies")
	assert.Equal(t, "eng", cfg.OCR.Language, "flag beats env")
	assert.Equal(t, "pplx-0123456789", cfg.AI.APIKey)
	assert.True(t, cfg.AIReady())
	assert.True(t, cfg.Batch.Execute)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, []string{"scan", "a.pdf"}, fs.Args())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docnamer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  model: from-file\n  enabled: false\nwatch:\n  debounce: 5s\nlog:\n  format: TEXT\n"), 0o600))

	cfg, _, err := load(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AI.Model)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, _, err := load(t, "--workers", "0", "--top-p", "1.5")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, CodeConfig, CodeOf(err))
	assert.Contains(t, err.Error(), "batch.workers")
	assert.Contains(t, err.Error(), "ai.top_p")

	_, _, err = load(t, "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, CodeConfig, CodeOf(err))

	_, _, err = load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAIReady_ShortKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.APIKey = "short"
	assert.False(t, cfg.AIReady())
	cfg.AI.APIKey = "0123456789"
	assert.True(t, cfg.AIReady())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("warn", "json", &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	NewLogger("debug", "text", &buf).Debug("x")
	assert.Contains(t, buf.String(), "level=DEBUG")

	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, ctx2)

	assert.Equal(t, "/in/a.pdf", PathFromContext(WithPath(ctx, "/in/a.pdf")))
	assert.Empty(t, PathFromContext(context.Background()))
}

func TestAppError(t *testing.T) {
	err := NewAppError(CodeRemoteCall, "perplexity", ErrRemoteCall)
	assert.ErrorIs(t, err, ErrRemoteCall)
	assert.Equal(t, "REMOTE_CALL_FAILED: perplexity: remote call failed", err.Error())
	assert.Equal(t, CodeRemoteCall, CodeOf(WrapError(err, "analyze")))
	assert.Nil(t, WrapError(nil, "x"))
}
