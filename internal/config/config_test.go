package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "finledger.db", cfg.Data.DatabaseFile)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.Equal(t, 30, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Categorization.CacheTTLMinutes)
	assert.True(t, cfg.Categorization.AutoLearn)
	assert.Equal(t, "pdftotext", cfg.PDF.PdftotextPath)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `log:
  level: debug
ai:
  enabled: true
  model: gemini-1.5-pro
`
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(content), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FINLEDGER_LOG_LEVEL", "warn")
	t.Setenv("FINLEDGER_AI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}
