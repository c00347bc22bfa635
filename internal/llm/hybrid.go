package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gighunt-engine/internal/classify"
	"gighunt-engine/internal/domain"
)

type Mode string

const (
	ModeOff      Mode = "off"
	ModePrimary  Mode = "primary"
	ModeOverride Mode = "override"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "", ModeOff:
		return ModeOff, nil
	case ModePrimary, ModeOverride:
		return m, nil
	}
	return "", fmt.Errorf("llm: unknown mode %q", s)
}

// Hybrid combines the rule classifier with the model adapter.
//
//   - off: rules only.
//   - primary: the model decides while the budget lasts, then rules.
//   - override: rules decide; a model verdict that clears the gate replaces
//     the rule verdict.
type Hybrid struct {
	Rules   classify.Classifier
	Adapter *Adapter // nil behaves like ModeOff
	Budget  *Budget
	Mode    Mode
	Timeout time.Duration
	Log     *slog.Logger
}

func (h *Hybrid) Classify(ctx context.Context, p domain.Posting) domain.ClassificationResult {
	if h.Adapter == nil || h.Mode == ModeOff || h.Mode == "" {
		return h.Rules.Classify(p)
	}

	switch h.Mode {
	case ModePrimary:
		if !h.Budget.Acquire(ctx) {
			return h.Rules.Classify(p)
		}
		return h.Adapter.Classify(ctx, p, h.Timeout)

	case ModeOverride:
		res := h.Rules.Classify(p)
		if !h.Budget.Acquire(ctx) {
			return res
		}
		if v := h.Adapter.Classify(ctx, p, h.Timeout); h.Adapter.Passes(v) {
			if v.IsEasy != res.IsEasy {
				h.logger().DebugContext(ctx, "llm overrides rule verdict",
					"link", p.Link, "rules_easy", res.IsEasy, "llm_easy", v.IsEasy, "confidence", v.Confidence)
			}
			return v
		}
		return res
	}
	return h.Rules.Classify(p)
}

func (h *Hybrid) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}
