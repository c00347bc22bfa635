// Package classify assigns postings to work-type templates using plain
// substring keyword rules.
package classify

import (
	"strings"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/domain"
)

type Classifier interface {
	Classify(p domain.Posting) domain.ClassificationResult
}

// Ruleset is the immutable keyword configuration of the rule classifier.
// Templates keep their registration order; it decides ties.
type Ruleset struct {
	Templates         []domain.Template
	Hard              []string
	Easy              []string
	EasyMaxDifficulty int
}

// RulesetFromConfig expects a config that already went through
// config.NormalizeAndValidate.
func RulesetFromConfig(cfg config.Config) Ruleset {
	return Ruleset{
		Templates:         cfg.DomainTemplates(),
		Hard:              cfg.Lexicon.Hard,
		Easy:              cfg.Lexicon.Easy,
		EasyMaxDifficulty: cfg.Scoring.EasyMaxDifficulty,
	}
}

type TemplateClassifier struct {
	rules Ruleset
}

func NewTemplateClassifier(rules Ruleset) *TemplateClassifier {
	r := Ruleset{
		Templates:         make([]domain.Template, len(rules.Templates)),
		Hard:              lowerAll(rules.Hard),
		Easy:              lowerAll(rules.Easy),
		EasyMaxDifficulty: rules.EasyMaxDifficulty,
	}
	for i, t := range rules.Templates {
		t.Keywords = lowerAll(t.Keywords)
		r.Templates[i] = t
	}
	if r.EasyMaxDifficulty == 0 {
		r.EasyMaxDifficulty = 2
	}
	return &TemplateClassifier{rules: r}
}

// Classify picks the template with the most keyword hits. On equal hits the
// template registered first wins. Any hit at all accepts the template; it
// is easy when its base difficulty is within EasyMaxDifficulty.
//
// With no template hit the global lexicons decide: a hard keyword rejects
// even if an easy keyword is also present.
func (c *TemplateClassifier) Classify(p domain.Posting) domain.ClassificationResult {
	text := p.Text()

	best, bestScore := -1, 0
	for i, t := range c.rules.Templates {
		score := CountHits(text, t.Keywords)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if bestScore > 0 {
		t := c.rules.Templates[best]
		res := domain.ClassificationResult{
			Template:   &t,
			Confidence: float64(bestScore) / float64(len(t.Keywords)),
			IsEasy:     t.BaseDifficulty <= c.rules.EasyMaxDifficulty,
			Origin:     domain.OriginRules,
		}
		if !res.IsEasy {
			res.RejectionReason = domain.ReasonTemplateTooHard
		}
		return res
	}

	switch {
	case ContainsAny(text, c.rules.Hard):
		return domain.ClassificationResult{RejectionReason: domain.ReasonHardKeyword, Origin: domain.OriginRules}
	case ContainsAny(text, c.rules.Easy):
		return domain.ClassificationResult{IsEasy: true, Origin: domain.OriginRules}
	default:
		return domain.ClassificationResult{RejectionReason: domain.ReasonNoTemplate, Origin: domain.OriginRules}
	}
}

// CountHits counts distinct needles occurring in text as substrings.
func CountHits(text string, needles []string) int {
	n := 0
	for _, k := range needles {
		if k != "" && strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func ContainsAny(text string, needles []string) bool {
	for _, k := range needles {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
