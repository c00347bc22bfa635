package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg, v := NormalizeAndValidate(Default())
	require.True(t, v.OK(), v.Errors)

	assert.Equal(t, 5, cfg.Selection.AlertBudget)
	assert.Equal(t, 1000, cfg.Dedup.Capacity)
	assert.Equal(t, "n8n_webhook_slack", cfg.Templates[0].Key)
	assert.Contains(t, cfg.Lexicon.Hot, "n8n")
	assert.Empty(t, cfg.App.AllowedOrigins)
}

func TestNormalizeAndValidate_TrimsAndDedupes(t *testing.T) {
	cfg := Default()
	cfg.Lexicon.Hard = []string{" Enterprise ", "enterprise", "", "NLP"}
	cfg.Templates[0].Keywords = []string{"N8N", " n8n", "Slack"}
	cfg.App.AllowedOrigins = []string{" Tauri://localhost/", "tauri://localhost"}

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK(), v.Errors)
	assert.Equal(t, []string{"enterprise", "nlp"}, out.Lexicon.Hard)
	assert.Equal(t, []string{"n8n", "slack"}, out.Templates[0].Keywords)
	assert.Equal(t, []string{"tauri://localhost"}, out.App.AllowedOrigins)

	assert.Equal(t, "N8N", cfg.Templates[0].Keywords[0], "input must not be mutated")
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"template difficulty", func(c *Config) { c.Templates[0].Difficulty = 6 }, "difficulty must be 1..5"},
		{"duplicate key", func(c *Config) { c.Templates[1].Key = c.Templates[0].Key }, "is duplicated"},
		{"empty keywords", func(c *Config) { c.Templates[0].Keywords = []string{" "} }, "at least 1 term"},
		{"alert budget", func(c *Config) { c.Selection.AlertBudget = -1 }, "alert_budget"},
		{"llm mode", func(c *Config) { c.LLM.Mode = "always" }, "llm.mode"},
		{"llm confidence", func(c *Config) { c.LLM.MinConfidence = 1.5 }, "min_confidence"},
		{"llm cap", func(c *Config) { c.LLM.Mode = "primary"; c.LLM.MaxCallsPerRun = 0 }, "max_calls_per_run"},
		{"redis url", func(c *Config) { c.Dedup.Backend = "redis"; c.Dedup.RedisURL = "" }, "redis_url"},
		{"backend", func(c *Config) { c.Dedup.Backend = "s3" }, "dedup.backend"},
		{"wildcard origin", func(c *Config) { c.App.AllowedOrigins = []string{"*"} }, "allowed_origins"},
		{"board selectors", func(c *Config) { c.Sources.Boards[0].Enabled = true; c.Sources.Boards[0].Item = "" }, "selectors"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, v := NormalizeAndValidate(cfg)
			require.False(t, v.OK())
			assert.Contains(t, v.Errors[0], tc.want)
		})
	}
}

func TestNormalizeAndValidate_Warnings(t *testing.T) {
	cfg := Default()
	cfg.Dedup.Capacity = 50
	cfg.Polling.RequestsPerSec = 0

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK())
	assert.Len(t, v.Warnings, 3) // capacity, rate, chat id
	assert.Equal(t, 1.0, out.Polling.RequestsPerSec)
}

func TestEnsureUserConfig_WritesOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	p, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), p)

	require.NoError(t, os.WriteFile(p, []byte("selection:\n  alert_budget: 2\n"), 0o644))
	p2, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Selection.AlertBudget)
}

func TestSaveAtomic_KeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	require.NoError(t, SaveAtomic(path, cfg))

	cfg.Selection.AlertBudget = 7
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Selection.AlertBudget)

	bak, err := Load(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, 5, bak.Selection.AlertBudget)

	cfg.Selection.AlertBudget = 0
	assert.Error(t, SaveAtomic(path, cfg))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("LLM_MODE", "override")

	cfg := Default()
	ApplyEnv(&cfg)
	assert.Equal(t, int64(-100123), cfg.Notify.Telegram.ChatID)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Dedup.RedisURL)
	assert.Equal(t, "override", cfg.LLM.Mode)
}

func TestOverlayTemplates(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	require.NoError(t, OverlayTemplates(&cfg, filepath.Join(dir, "missing.yml")))
	assert.Greater(t, len(cfg.Templates), 1)

	p := filepath.Join(dir, "templates.yml")
	require.NoError(t, os.WriteFile(p, []byte("templates:\n  - key: a\n    keywords: [x]\n    difficulty: 1\n"), 0o644))
	require.NoError(t, OverlayTemplates(&cfg, p))
	require.Len(t, cfg.Templates, 1)
	assert.Equal(t, "a", cfg.Templates[0].Key)

	require.NoError(t, os.WriteFile(p, []byte("templates: [unclosed"), 0o644))
	assert.Error(t, OverlayTemplates(&cfg, p))
}

func TestDomainTemplates_PreservesOrder(t *testing.T) {
	cfg := Default()
	ts := cfg.DomainTemplates()
	require.Len(t, ts, len(cfg.Templates))
	for i := range ts {
		assert.Equal(t, cfg.Templates[i].Key, ts[i].Key)
		assert.Equal(t, cfg.Templates[i].Difficulty, ts[i].BaseDifficulty)
	}
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "seen.json"), ResolvePath("data", "seen.json"))
	assert.Equal(t, "/abs/seen.json", ResolvePath("data", "/abs/seen.json"))
	assert.Equal(t, "", ResolvePath("data", ""))
}
