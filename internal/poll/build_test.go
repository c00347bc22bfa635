package poll

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/dedup"
	"gighunt-engine/internal/llm"
	"gighunt-engine/internal/notify"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type nopCompleter struct{}

func (nopCompleter) Complete(context.Context, llm.Prompt) (string, error) { return "{}", nil }

func nopLookup(config.Config) llm.Completer { return nopCompleter{} }

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, v := config.NormalizeAndValidate(config.Default())
	require.True(t, v.OK(), v.Errors)
	return cfg
}

func TestClassifierFromConfig(t *testing.T) {
	cfg := defaultConfig(t)

	t.Run("off has no budget", func(t *testing.T) {
		cls, budget, err := ClassifierFromConfig(nopLookup, quietLog)(cfg)
		require.NoError(t, err)
		assert.NotNil(t, cls)
		assert.Nil(t, budget)
	})

	t.Run("primary without client falls back to rules", func(t *testing.T) {
		c := cfg
		c.LLM.Mode = "primary"
		cls, budget, err := ClassifierFromConfig(nil, quietLog)(c)
		require.NoError(t, err)
		assert.Nil(t, budget)
		assert.Equal(t, llm.ModeOff, cls.(*llm.Hybrid).Mode)
	})

	t.Run("override gets a capped budget", func(t *testing.T) {
		c := cfg
		c.LLM.Mode = "override"
		c.LLM.MaxCallsPerRun = 4
		cls, budget, err := ClassifierFromConfig(nopLookup, quietLog)(c)
		require.NoError(t, err)
		require.NotNil(t, budget)
		assert.Equal(t, 4, budget.Remaining())
		assert.Same(t, budget, cls.(*llm.Hybrid).Budget)
	})

	t.Run("unknown mode", func(t *testing.T) {
		c := cfg
		c.LLM.Mode = "maybe"
		_, _, err := ClassifierFromConfig(nil, quietLog)(c)
		assert.Error(t, err)
	})
}

func TestNotifierFromConfig_FallsBackToLog(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Notify.Telegram.Enabled = true
	cfg.Notify.Telegram.ChatID = 42
	tok := func(config.Config) string { return "t" }

	cases := []struct {
		name   string
		token  TokenFunc
		dryRun bool
		mutate func(*config.Config)
	}{
		{name: "dry run", token: tok, dryRun: true},
		{name: "no token", token: func(config.Config) string { return "" }},
		{name: "no lookup", token: nil},
		{name: "no chat", token: tok, mutate: func(c *config.Config) { c.Notify.Telegram.ChatID = 0 }},
		{name: "disabled", token: tok, mutate: func(c *config.Config) { c.Notify.Telegram.Enabled = false }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			if tc.mutate != nil {
				tc.mutate(&c)
			}
			n, err := NotifierFromConfig(tc.token, tc.dryRun, quietLog)(c)
			require.NoError(t, err)
			assert.IsType(t, notify.LogNotifier{}, n)
		})
	}
}

func TestSeenFromConfig(t *testing.T) {
	cfg := defaultConfig(t)
	dir := t.TempDir()
	ctx := context.Background()

	s, err := SeenFromConfig(dir, false, quietLog)(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &dedup.FileStore{}, s)
	s.Record("abc")
	require.NoError(t, s.Close())

	dry, err := SeenFromConfig(dir, true, quietLog)(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &dedup.MemoryStore{}, dry)
	assert.True(t, dry.HasSeen("abc"))

	set := dedup.LoadFile(filepath.Join(dir, cfg.Dedup.Path), cfg.Dedup.Capacity, quietLog)
	assert.Equal(t, 1, set.Len())

	cfg.Dedup.Backend = "etcd"
	_, err = SeenFromConfig(dir, false, quietLog)(ctx, cfg)
	assert.Error(t, err)
}

func TestNotifierFromConfig_LooksUpTokenOnlyWhenEnabled(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Notify.Telegram.ChatID = 42
	var lookups int
	build := NotifierFromConfig(func(config.Config) string { lookups++; return "" }, false, quietLog)

	cfg.Notify.Telegram.Enabled = false
	_, err := build(cfg)
	require.NoError(t, err)
	assert.Zero(t, lookups)

	cfg.Notify.Telegram.Enabled = true
	_, err = build(cfg)
	require.NoError(t, err)
	_, err = build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, lookups)
}

func TestSeenFromConfig_UnreachableRedisFailsOpen(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Dedup.Backend = "redis"
	cfg.Dedup.RedisURL = "redis://127.0.0.1:1/0"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := SeenFromConfig(t.TempDir(), false, quietLog)(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &dedup.MemoryStore{}, s)
	assert.False(t, s.HasSeen("abc"))
	s.Record("abc")
	assert.True(t, s.HasSeen("abc"))
	assert.NoError(t, s.Flush())
	assert.NoError(t, s.Close())
}
