package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg: keyword lists are
// trimmed, lowercased and deduplicated, zero values get their defaults.
// Template order is never changed.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Lexicon.Hard = trimList(out.Lexicon.Hard)
	out.Lexicon.Easy = trimList(out.Lexicon.Easy)
	out.Lexicon.Hot = trimList(out.Lexicon.Hot)

	origins := make([]string, len(cfg.App.AllowedOrigins))
	for i, o := range cfg.App.AllowedOrigins {
		origins[i] = strings.TrimRight(strings.TrimSpace(o), "/")
	}
	out.App.AllowedOrigins = trimList(origins)

	out.Templates = make([]Template, len(cfg.Templates))
	for i, t := range cfg.Templates {
		t.Keywords = trimList(t.Keywords)
		out.Templates[i] = t
	}
	out.Scoring.BudgetTiers = make([]BudgetTier, len(cfg.Scoring.BudgetTiers))
	for i, t := range cfg.Scoring.BudgetTiers {
		t.Any = trimList(t.Any)
		out.Scoring.BudgetTiers[i] = t
	}

	// ---- Defaults ----

	if out.Dedup.Backend == "" {
		out.Dedup.Backend = "file"
	}
	if out.Dedup.Capacity == 0 {
		out.Dedup.Capacity = 1000
	}
	if out.Dedup.Path == "" {
		out.Dedup.Path = "seen_jobs.json"
	}
	if out.Dedup.RedisKey == "" {
		out.Dedup.RedisKey = "gighunt:seen"
	}
	if out.Scoring.EasyMaxDifficulty == 0 {
		out.Scoring.EasyMaxDifficulty = 2
	}
	if out.Scoring.DefaultDifficulty == 0 {
		out.Scoring.DefaultDifficulty = 3
	}
	if out.Scoring.HardHitsForBump == 0 {
		out.Scoring.HardHitsForBump = 2
	}
	if out.Scoring.BaseRecommendation == 0 {
		out.Scoring.BaseRecommendation = 3
	}
	if out.LLM.Mode == "" {
		out.LLM.Mode = "off"
	}
	if out.LLM.MinConfidence == 0 {
		out.LLM.MinConfidence = 0.7
	}
	if out.LLM.TimeoutSeconds == 0 {
		out.LLM.TimeoutSeconds = 30
	}
	if out.Polling.TimeoutSeconds == 0 {
		out.Polling.TimeoutSeconds = 120
	}
	if out.Polling.Schedule == "" {
		out.Polling.Schedule = "@every 4h"
	}
	if out.Store.Path == "" {
		out.Store.Path = "gighunt.db"
	}

	// ---- Validation rules ----

	for _, o := range out.App.AllowedOrigins {
		if o == "*" || o == "null" {
			res.addErr("app.allowed_origins must list explicit origins, got %q", o)
		}
	}

	if out.Dedup.Capacity < 0 {
		res.addErr("dedup.capacity must be > 0")
	} else if out.Dedup.Capacity < 100 {
		res.addWarn("dedup.capacity is very low (%d); duplicates may resurface between runs.", out.Dedup.Capacity)
	}
	switch out.Dedup.Backend {
	case "file":
	case "redis":
		if strings.TrimSpace(out.Dedup.RedisURL) == "" {
			res.addErr("dedup.redis_url is required when dedup.backend=redis")
		}
	default:
		res.addErr("dedup.backend must be file or redis, got %q", out.Dedup.Backend)
	}

	if len(out.Templates) == 0 {
		res.addWarn("no templates configured; only the easy lexicon can mark postings easy.")
	}
	keys := map[string]bool{}
	for i, t := range out.Templates {
		if strings.TrimSpace(t.Key) == "" {
			res.addErr("templates[%d].key is required", i)
		} else if keys[t.Key] {
			res.addErr("templates[%d].key %q is duplicated", i, t.Key)
		}
		keys[t.Key] = true
		if len(t.Keywords) == 0 {
			res.addErr("templates[%d].keywords must have at least 1 term", i)
		}
		if t.Difficulty < 1 || t.Difficulty > 5 {
			res.addErr("templates[%d].difficulty must be 1..5, got %d", i, t.Difficulty)
		}
	}

	if out.Scoring.EasyMaxDifficulty < 1 || out.Scoring.EasyMaxDifficulty > 5 {
		res.addErr("scoring.easy_max_difficulty must be 1..5")
	}
	if out.Scoring.DefaultDifficulty < 1 || out.Scoring.DefaultDifficulty > 5 {
		res.addErr("scoring.default_difficulty must be 1..5")
	}
	for i, t := range out.Scoring.BudgetTiers {
		if len(t.Any) == 0 {
			res.addErr("scoring.budget_tiers[%d].any must have at least 1 term", i)
		}
		if i > 0 && t.Bonus > out.Scoring.BudgetTiers[i-1].Bonus {
			res.addWarn("scoring.budget_tiers[%d] pays more than the tier above it; tiers are tested in order.", i)
		}
	}

	if out.Selection.AlertBudget <= 0 {
		res.addErr("selection.alert_budget must be > 0")
	} else if out.Selection.AlertBudget > 20 {
		res.addWarn("selection.alert_budget is high (%d); alerts may get noisy.", out.Selection.AlertBudget)
	}

	switch out.LLM.Mode {
	case "off", "primary", "override":
	default:
		res.addErr("llm.mode must be off, primary or override, got %q", out.LLM.Mode)
	}
	if out.LLM.MinConfidence < 0 || out.LLM.MinConfidence > 1 {
		res.addErr("llm.min_confidence must be within 0..1")
	}
	if out.LLM.Mode != "off" {
		if out.LLM.MaxCallsPerRun <= 0 {
			res.addErr("llm.max_calls_per_run must be > 0 when llm.mode=%s", out.LLM.Mode)
		}
		if out.LLM.MinSpacingMillis < 0 {
			res.addErr("llm.min_spacing_ms must be >= 0")
		}
	}

	if out.Polling.RequestsPerSec <= 0 {
		res.addWarn("polling.requests_per_sec is not set; defaulting to 1 request/second per host.")
		out.Polling.RequestsPerSec = 1
	}
	if !out.Sources.Upwork.Enabled && !out.Sources.Freelancer.Enabled && !anyBoardEnabled(out.Sources.Boards) {
		res.addWarn("no sources enabled; runs will find nothing.")
	}
	for i, b := range out.Sources.Boards {
		if !b.Enabled {
			continue
		}
		if b.URL == "" || b.Item == "" || b.Title == "" || b.Link == "" {
			res.addErr("sources.boards[%d] needs url, item, title and link selectors", i)
		}
	}

	if out.Notify.Telegram.Enabled && out.Notify.Telegram.ChatID == 0 {
		res.addWarn("notify.telegram.chat_id is 0; set TELEGRAM_CHAT_ID or alerts will only be logged.")
	}

	return out, res
}

func anyBoardEnabled(bs []HTMLBoard) bool {
	for _, b := range bs {
		if b.Enabled {
			return true
		}
	}
	return false
}
