package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gighunt-engine/internal/domain"
)

const (
	DefaultMinConfidence = 0.7
	DefaultTimeout       = 30 * time.Second

	defaultDifficulty = 3
)

// Adapter turns a model completion into a ClassificationResult. It never
// returns an error: any failure becomes a rejection.
type Adapter struct {
	c             Completer
	minConfidence float64
	log           *slog.Logger
}

func NewAdapter(c Completer, minConfidence float64, log *slog.Logger) *Adapter {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{c: c, minConfidence: minConfidence, log: log}
}

func (a *Adapter) MinConfidence() float64 { return a.minConfidence }

// Classify asks the model about p and waits at most timeout for the answer.
func (a *Adapter) Classify(ctx context.Context, p domain.Posting, timeout time.Duration) domain.ClassificationResult {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := a.c.Complete(ctx, BuildPrompt(p))
	if err != nil {
		a.log.WarnContext(ctx, "llm call failed",
			"category", "adapter_unavailable", "source", p.Source, "link", p.Link,
			"timeout", errors.Is(err, context.DeadlineExceeded), "error", err)
		return unavailable()
	}

	v, err := ParseVerdict(raw)
	if err != nil {
		a.log.WarnContext(ctx, "llm response unusable",
			"category", "adapter_unavailable", "source", p.Source, "link", p.Link, "error", err)
		return unavailable()
	}

	conf := *v.Confidence
	if conf < a.minConfidence {
		a.log.DebugContext(ctx, "llm verdict below confidence gate",
			"link", p.Link, "confidence", conf, "min", a.minConfidence, "is_easy", v.IsEasy)
		return domain.ClassificationResult{
			Confidence:      conf,
			RejectionReason: domain.ReasonLowConfidence,
			Origin:          domain.OriginLLM,
		}
	}

	if !v.IsEasy {
		a.log.DebugContext(ctx, "llm verdict: not easy",
			"link", p.Link, "confidence", conf, "reason", v.RejectionReason)
		return domain.ClassificationResult{
			Confidence:      conf,
			RejectionReason: domain.ReasonAdapterNotEasy,
			Origin:          domain.OriginLLM,
		}
	}

	t := v.Template()
	return domain.ClassificationResult{
		Template:   &t,
		Confidence: conf,
		IsEasy:     true,
		Origin:     domain.OriginLLM,
	}
}

// Passes reports whether r is a usable verdict: the call succeeded and its
// confidence cleared the gate.
func (a *Adapter) Passes(r domain.ClassificationResult) bool {
	switch r.RejectionReason {
	case domain.ReasonAdapterUnavailable, domain.ReasonLowConfidence:
		return false
	}
	return r.Origin == domain.OriginLLM && r.Confidence >= a.minConfidence
}

func unavailable() domain.ClassificationResult {
	return domain.ClassificationResult{
		RejectionReason: domain.ReasonAdapterUnavailable,
		Origin:          domain.OriginLLM,
	}
}

// ParseVerdict extracts and validates the verdict object from raw model
// output. Prose around the object is ignored.
func ParseVerdict(raw string) (Verdict, error) {
	var v Verdict
	obj, err := ExtractJSON(raw)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return v, fmt.Errorf("llm: decode verdict: %w", err)
	}
	if v.Confidence == nil {
		return v, errors.New("llm: verdict has no confidence")
	}
	if c := *v.Confidence; c < 0 || c > 1 {
		return v, fmt.Errorf("llm: confidence %v outside [0,1]", c)
	}
	return v, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Template builds an ad-hoc template from the model's delegation guidance.
func (v Verdict) Template() domain.Template {
	name := strings.TrimSpace(v.Category)
	if name == "" {
		name = "LLM suggestion"
	}
	key := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "_"), "_")

	diff := v.Difficulty
	switch {
	case diff == 0:
		diff = defaultDifficulty
	case diff < 1:
		diff = 1
	case diff > 5:
		diff = 5
	}

	g := domain.Guidance{
		ClientWants:    strings.Join(v.Requirements, "; "),
		GeneratedTasks: append([]string(nil), v.Requirements...),
		Prompt:         v.GenerationPrompt,
		Delivery:       v.DeliveryGuidance,
		PriceRange:     v.EstimatedPrice,
	}
	if v.EstimatedHours > 0 {
		g.TimeEstimate = fmt.Sprintf("%gh", v.EstimatedHours)
	}

	return domain.Template{
		Key:            "llm_" + key,
		Name:           name,
		BaseDifficulty: diff,
		Guidance:       g,
	}
}
