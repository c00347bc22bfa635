// engine/internal/rank/heuristic_scorer.go
package rank

import (
	"math"
	"strings"

	"gighunt-engine/internal/classify"
	"gighunt-engine/internal/config"
	"gighunt-engine/internal/domain"
)

type Tier struct {
	Any   []string
	Bonus float64
}

// Weights are the named scoring constants. Budget tiers are tested in
// order and the first matching tier is the only one applied.
type Weights struct {
	Hard []string
	Easy []string
	Hot  []string

	DefaultDifficulty int
	HardHitsForBump   int

	BaseRecommendation float64
	BudgetTiers        []Tier
	HotBonus           float64
	VeryHardPenalty    float64 // difficulty >= 5
	HardPenalty        float64 // difficulty == 4
	EasyBonus          float64 // difficulty <= 2
}

func WeightsFromConfig(cfg config.Config) Weights {
	w := Weights{
		Hard:               cfg.Lexicon.Hard,
		Easy:               cfg.Lexicon.Easy,
		Hot:                cfg.Lexicon.Hot,
		DefaultDifficulty:  cfg.Scoring.DefaultDifficulty,
		HardHitsForBump:    cfg.Scoring.HardHitsForBump,
		BaseRecommendation: cfg.Scoring.BaseRecommendation,
		HotBonus:           cfg.Scoring.HotBonus,
		VeryHardPenalty:    cfg.Scoring.VeryHardPenalty,
		HardPenalty:        cfg.Scoring.HardPenalty,
		EasyBonus:          cfg.Scoring.EasyBonus,
	}
	for _, t := range cfg.Scoring.BudgetTiers {
		w.BudgetTiers = append(w.BudgetTiers, Tier{Any: t.Any, Bonus: t.Bonus})
	}
	return w
}

type HeuristicScorer struct {
	W Weights
}

func NewHeuristicScorer(w Weights) HeuristicScorer {
	w.Hard = lower(w.Hard)
	w.Easy = lower(w.Easy)
	w.Hot = lower(w.Hot)
	if w.DefaultDifficulty == 0 {
		w.DefaultDifficulty = 3
	}
	if w.HardHitsForBump == 0 {
		w.HardHitsForBump = 2
	}
	return HeuristicScorer{W: w}
}

func (s HeuristicScorer) Score(p domain.Posting, c domain.ClassificationResult) domain.ScoreResult {
	text := p.Text()
	diff := s.Difficulty(text, c)
	return domain.ScoreResult{
		Difficulty:     diff,
		Recommendation: s.Recommendation(text, p.BudgetText, diff),
	}
}

// Difficulty starts at the template's base difficulty (or the default),
// goes up one with enough hard keywords and down one with any easy keyword.
func (s HeuristicScorer) Difficulty(text string, c domain.ClassificationResult) int {
	base := s.W.DefaultDifficulty
	if c.Template != nil && c.Template.BaseDifficulty > 0 {
		base = c.Template.BaseDifficulty
	}
	if classify.CountHits(text, s.W.Hard) >= s.W.HardHitsForBump {
		base++
	}
	if classify.ContainsAny(text, s.W.Easy) {
		base--
	}
	return clamp(base)
}

func (s HeuristicScorer) Recommendation(text, budgetText string, difficulty int) int {
	score := s.W.BaseRecommendation
	score += s.BudgetBonus(budgetText)

	if classify.ContainsAny(text, s.W.Hot) {
		score += s.W.HotBonus
	}

	switch {
	case difficulty >= 5:
		score -= s.W.VeryHardPenalty
	case difficulty >= 4:
		score -= s.W.HardPenalty
	case difficulty <= 2:
		score += s.W.EasyBonus
	}

	// math.Round rounds half away from zero.
	return clamp(int(math.Round(score)))
}

// BudgetBonus returns the bonus of the first tier with a substring in
// budgetText, or 0.
func (s HeuristicScorer) BudgetBonus(budgetText string) float64 {
	b := strings.ToLower(budgetText)
	for _, t := range s.W.BudgetTiers {
		if classify.ContainsAny(b, t.Any) {
			return t.Bonus
		}
	}
	return 0
}

func clamp(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
