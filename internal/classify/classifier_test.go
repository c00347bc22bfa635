package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gighunt-engine/internal/classify"
	"gighunt-engine/internal/config"
	"gighunt-engine/internal/domain"
)

func defaultClassifier(t *testing.T) *classify.TemplateClassifier {
	t.Helper()
	cfg, v := config.NormalizeAndValidate(config.Default())
	require.True(t, v.OK(), v.Errors)
	return classify.NewTemplateClassifier(classify.RulesetFromConfig(cfg))
}

func TestClassify_WebhookToSlackScenario(t *testing.T) {
	c := defaultClassifier(t)

	res := c.Classify(domain.Posting{
		Title:      "Need n8n webhook to Slack notification, simple",
		BudgetText: "$75",
		Link:       "https://example.com/jobs/1",
	})

	require.NotNil(t, res.Template)
	assert.Equal(t, "n8n_webhook_slack", res.Template.Key)
	assert.True(t, res.IsEasy)
	assert.Empty(t, res.RejectionReason)
	assert.InDelta(t, 4.0/5.0, res.Confidence, 1e-9)
	assert.Equal(t, domain.OriginRules, res.Origin)
}

func TestClassify_HardExclusionWithoutTemplate(t *testing.T) {
	c := defaultClassifier(t)

	res := c.Classify(domain.Posting{
		Title:       "Enterprise machine learning pipeline",
		Description: "",
		BudgetText:  "$5000",
	})

	assert.Nil(t, res.Template)
	assert.False(t, res.IsEasy)
	assert.Equal(t, domain.ReasonHardKeyword, res.RejectionReason)
}

func TestClassify_HardBeatsEasyWithoutTemplate(t *testing.T) {
	c := defaultClassifier(t)

	res := c.Classify(domain.Posting{Title: "Quick enterprise job"})
	assert.False(t, res.IsEasy)
	assert.Equal(t, domain.ReasonHardKeyword, res.RejectionReason)
}

func TestClassify_EasyLexiconWithoutTemplate(t *testing.T) {
	c := defaultClassifier(t)

	res := c.Classify(domain.Posting{Title: "Quick favor needed"})
	assert.True(t, res.IsEasy)
	assert.Nil(t, res.Template)
	assert.Zero(t, res.Confidence)
}

func TestClassify_NothingMatches(t *testing.T) {
	c := defaultClassifier(t)

	res := c.Classify(domain.Posting{Title: "Write a novel"})
	assert.False(t, res.IsEasy)
	assert.Nil(t, res.Template)
	assert.Equal(t, domain.ReasonNoTemplate, res.RejectionReason)
}

func TestClassify_FirstRegisteredWinsOnTie(t *testing.T) {
	first := domain.Template{Key: "first", Keywords: []string{"bot", "reply"}, BaseDifficulty: 1}
	second := domain.Template{Key: "second", Keywords: []string{"bot", "reply"}, BaseDifficulty: 1}
	p := domain.Posting{Title: "Bot that can reply"}

	c := classify.NewTemplateClassifier(classify.Ruleset{Templates: []domain.Template{first, second}})
	assert.Equal(t, "first", c.Classify(p).Template.Key)

	swapped := classify.NewTemplateClassifier(classify.Ruleset{Templates: []domain.Template{second, first}})
	assert.Equal(t, "second", swapped.Classify(p).Template.Key)
}

func TestClassify_MoreHitsBeatRegistrationOrder(t *testing.T) {
	c := classify.NewTemplateClassifier(classify.Ruleset{Templates: []domain.Template{
		{Key: "one", Keywords: []string{"bot"}, BaseDifficulty: 1},
		{Key: "two", Keywords: []string{"bot", "reply"}, BaseDifficulty: 1},
	}})
	assert.Equal(t, "two", c.Classify(domain.Posting{Title: "Bot that can reply"}).Template.Key)
}

func TestClassify_SingleHitUsesSameDifficultyRule(t *testing.T) {
	rules := classify.Ruleset{
		Templates: []domain.Template{
			{Key: "easy", Keywords: []string{"zapier", "unused"}, BaseDifficulty: 2},
			{Key: "hard", Keywords: []string{"botpress", "unused2"}, BaseDifficulty: 4},
		},
		Easy: []string{"simple"},
	}
	c := classify.NewTemplateClassifier(rules)

	single := c.Classify(domain.Posting{Title: "zapier help"})
	assert.Equal(t, "easy", single.Template.Key)
	assert.True(t, single.IsEasy)

	hard := c.Classify(domain.Posting{Title: "simple botpress help"})
	require.NotNil(t, hard.Template)
	assert.Equal(t, "hard", hard.Template.Key)
	assert.False(t, hard.IsEasy, "an easy lexicon hit must not rescue a hard template")
	assert.Equal(t, domain.ReasonTemplateTooHard, hard.RejectionReason)
}

func TestClassify_KeywordsAreCaseInsensitive(t *testing.T) {
	c := classify.NewTemplateClassifier(classify.Ruleset{Templates: []domain.Template{
		{Key: "sheets", Keywords: []string{"Google Sheet"}, BaseDifficulty: 1},
	}})
	res := c.Classify(domain.Posting{Description: "update my GOOGLE SHEETS weekly"})
	require.NotNil(t, res.Template)
	assert.Equal(t, "sheets", res.Template.Key)
}

func TestClassify_Deterministic(t *testing.T) {
	c := defaultClassifier(t)
	postings := []domain.Posting{
		{Title: "Need n8n webhook to Slack notification, simple"},
		{Title: "ManyChat instagram DM auto reply", Description: "small task"},
		{Title: "Enterprise machine learning pipeline"},
		{Title: "Clean a CSV with python", Description: "remove duplicate rows"},
	}
	for _, p := range postings {
		assert.Equal(t, c.Classify(p), c.Classify(p), p.Title)
	}
}

func TestClassify_TemplateResultIsACopy(t *testing.T) {
	c := defaultClassifier(t)
	p := domain.Posting{Title: "n8n webhook slack"}

	res := c.Classify(p)
	require.NotNil(t, res.Template)
	res.Template.BaseDifficulty = 5

	again := c.Classify(p)
	assert.Equal(t, 1, again.Template.BaseDifficulty)
}
