// Package pipeline runs one pass of dedup, classification, scoring and
// selection over a batch of postings.
package pipeline

import (
	"context"
	"log/slog"

	"gighunt-engine/internal/dedup"
	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/llm"
	"gighunt-engine/internal/rank"
)

type Classifier interface {
	Classify(ctx context.Context, p domain.Posting) domain.ClassificationResult
}

type Pipeline struct {
	Classifier  Classifier
	Scorer      rank.Scorer
	Seen        dedup.Store
	Budget      *llm.Budget // shared with the classifier; nil when the model is off
	AlertBudget int
	Floors      rank.Floors
	Log         *slog.Logger
}

type Stats struct {
	Total      int `json:"total"`
	Invalid    int `json:"invalid"`
	Duplicates int `json:"duplicates"`
	Evaluated  int `json:"evaluated"`
	Easy       int `json:"easy"`
	LLMCalls   int `json:"llm_calls"`
	Selected   int `json:"selected"`
}

// Run evaluates postings in arrival order and returns the selected alerts.
// Fingerprints are recorded as soon as a posting is evaluated, so a posting
// is never evaluated twice even if the run dies before notification. The
// caller owns flushing and closing Seen.
func (p *Pipeline) Run(ctx context.Context, postings []domain.Posting) ([]domain.ScoredPosting, Stats) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	p.Budget.Reset()

	var st Stats
	var scored []domain.ScoredPosting

	for _, post := range postings {
		st.Total++

		if !post.Valid() {
			st.Invalid++
			log.WarnContext(ctx, "skipping posting without title or link",
				"category", "invalid_posting", "source", post.Source, "link", post.Link, "title", post.Title)
			continue
		}

		if ctx.Err() != nil {
			// unevaluated postings stay unrecorded
			break
		}

		fp := dedup.Fingerprint(post.Title, post.Link)
		if p.Seen.HasSeen(fp) {
			st.Duplicates++
			continue
		}
		p.Seen.Record(fp)

		cls := p.Classifier.Classify(ctx, post)
		st.Evaluated++

		sp := domain.ScoredPosting{
			Posting:        post,
			Fingerprint:    fp,
			Classification: cls,
			Score:          p.Scorer.Score(post, cls),
		}
		if cls.IsEasy {
			st.Easy++
		} else {
			log.DebugContext(ctx, "posting rejected",
				"fingerprint", fp, "source", post.Source, "reason", cls.RejectionReason, "origin", cls.Origin)
		}
		scored = append(scored, sp)
	}

	selected := rank.Select(scored, p.AlertBudget, p.Floors)
	st.Selected = len(selected)
	st.LLMCalls = p.Budget.Used()

	log.InfoContext(ctx, "pipeline pass finished",
		"total", st.Total, "invalid", st.Invalid, "duplicates", st.Duplicates,
		"evaluated", st.Evaluated, "easy", st.Easy, "llm_calls", st.LLMCalls, "selected", st.Selected)

	return selected, st
}
