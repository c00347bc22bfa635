package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gighunt-engine/internal/config"
)

func TestLoadConfig_AppliesTemplatesOverlay(t *testing.T) {
	dir := t.TempDir()
	path, err := config.EnsureUserConfig(dir)
	require.NoError(t, err)

	overlay := `templates:
  - key: airtable_sync
    name: Airtable sync
    keywords: [" Airtable ", sync]
    difficulty: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates.yml"), []byte(overlay), 0o644))

	cfg, _, err := loadConfig(path, dir)
	require.NoError(t, err)
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, []string{"airtable", "sync"}, cfg.Templates[0].Keywords)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("selection:\n  alert_budget: 0\n"), 0o644))

	_, _, err := loadConfig(path, dir)
	assert.ErrorContains(t, err, "alert_budget")
}

func TestNewLogger_Level(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, newLogger("warn").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, newLogger("nonsense").Enabled(context.Background(), slog.LevelInfo))
}
