package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gighunt-engine/internal/classify"
	"gighunt-engine/internal/config"
	"gighunt-engine/internal/dedup"
	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/llm"
	"gighunt-engine/internal/notify"
	"gighunt-engine/internal/pipeline"
	"gighunt-engine/internal/scrape"
)

// FetchFromConfig fetches from every source enabled in cfg.
func FetchFromConfig(hc *http.Client, log *slog.Logger) FetchFunc {
	log = orDefault(log)
	return func(ctx context.Context, cfg config.Config) ([]domain.Posting, []scrape.SourceReport) {
		return scrape.FetchAll(ctx, scrape.FromConfig(cfg, hc), log)
	}
}

// SeenFromConfig opens the configured dedup backend. Dry runs get an
// in-memory copy of the persisted log so nothing is written back. Only a
// held lock is an error; an unreachable redis starts empty.
func SeenFromConfig(dataDir string, dryRun bool, log *slog.Logger) SeenFunc {
	log = orDefault(log)
	return func(ctx context.Context, cfg config.Config) (dedup.Store, error) {
		d := cfg.Dedup
		switch d.Backend {
		case "redis":
			if dryRun {
				return dedup.NewMemory(dedup.LoadRedis(ctx, d.RedisURL, d.RedisKey, d.Capacity, log)), nil
			}
			st, err := dedup.DialRedis(ctx, d.RedisURL, d.RedisKey, d.Capacity, log)
			if err == nil {
				return st, nil
			}
			if errors.Is(err, dedup.ErrLocked) {
				return nil, err
			}
			// unreachable redis runs like a missing seen log
			log.Warn("seen list unreachable, starting empty", "category", "state_corrupt", "key", d.RedisKey, "err", err)
			return dedup.NewMemory(dedup.NewSeenSet(d.Capacity)), nil
		case "file", "":
			path := config.ResolvePath(dataDir, d.Path)
			if dryRun {
				return dedup.NewMemory(dedup.LoadFile(path, d.Capacity, log)), nil
			}
			return dedup.OpenFile(path, d.Capacity, log)
		default:
			return nil, fmt.Errorf("unknown dedup backend %q", d.Backend)
		}
	}
}

// ClassifierFromConfig builds the rules classifier, wrapped with the model
// adapter when llm.mode asks for it. completer is consulted on every cycle
// the model is on; a nil func or a nil result forces rules only.
func ClassifierFromConfig(completer CompleterFunc, log *slog.Logger) ClassifierFunc {
	log = orDefault(log)
	return func(cfg config.Config) (pipeline.Classifier, *llm.Budget, error) {
		mode, err := llm.ParseMode(cfg.LLM.Mode)
		if err != nil {
			return nil, nil, err
		}
		rules := classify.NewTemplateClassifier(classify.RulesetFromConfig(cfg))

		h := &llm.Hybrid{Rules: rules, Mode: llm.ModeOff, Log: log}
		if mode == llm.ModeOff {
			return h, nil, nil
		}
		var c llm.Completer
		if completer != nil {
			c = completer(cfg)
		}
		if c == nil {
			log.Warn("llm mode set but no model client is available, using rules only",
				"category", "adapter_unavailable", "mode", mode)
			return h, nil, nil
		}

		h.Mode = mode
		h.Adapter = llm.NewAdapter(c, cfg.LLM.MinConfidence, log)
		h.Budget = llm.NewBudget(cfg.LLM.MaxCallsPerRun, time.Duration(cfg.LLM.MinSpacingMillis)*time.Millisecond)
		h.Timeout = time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		return h, h.Budget, nil
	}
}

// NotifierFromConfig sends through Telegram when it is enabled and fully
// configured, and logs alerts otherwise. The token is looked up per cycle.
func NotifierFromConfig(token TokenFunc, dryRun bool, log *slog.Logger) NotifierFunc {
	log = orDefault(log)
	return func(cfg config.Config) (notify.Notifier, error) {
		tg := cfg.Notify.Telegram
		fallback := notify.LogNotifier{Log: log}
		if dryRun || !tg.Enabled {
			return fallback, nil
		}
		var tok string
		if token != nil {
			tok = token(cfg)
		}
		switch {
		case tok == "":
			log.Warn("telegram token missing, alerts will only be logged", "category", "notify_failed")
			return fallback, nil
		case tg.ChatID == 0:
			log.Warn("telegram chat id missing, alerts will only be logged", "category", "notify_failed")
			return fallback, nil
		}
		return notify.NewTelegram(notify.TelegramConfig{
			Token:   tok,
			ChatID:  tg.ChatID,
			Spacing: time.Duration(tg.SpacingMillis) * time.Millisecond,
		}, log)
	}
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
