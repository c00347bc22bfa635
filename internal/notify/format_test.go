package notify_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/notify"
)

func alert() domain.ScoredPosting {
	return domain.ScoredPosting{
		Posting: domain.Posting{
			Source:     domain.SourceUpwork,
			Title:      "Need n8n webhook -> Slack <urgent>",
			BudgetText: "$75",
			Link:       "https://www.upwork.com/jobs/~01?a=1&b=2",
		},
		Fingerprint: "fp",
		Classification: domain.ClassificationResult{
			IsEasy: true,
			Template: &domain.Template{
				Key:  "n8n_webhook_slack",
				Name: "n8n webhook -> Slack notification",
				Guidance: domain.Guidance{
					ClientWants:    "Post a Slack message whenever a form is submitted",
					OperatorTasks:  []string{"Import the workflow", "Connect Slack"},
					GeneratedTasks: []string{"Webhook trigger node"},
					Prompt:         strings.Repeat("p", 400),
					OutputType:     "n8n workflow JSON",
					Delivery:       "Import and activate",
					PriceRange:     "$50-100",
					TimeEstimate:   "30m",
				},
			},
		},
		Score: domain.ScoreResult{Difficulty: 1, Recommendation: 5},
	}
}

func TestFormatAlert(t *testing.T) {
	msg := notify.FormatAlert(alert())

	assert.True(t, strings.HasPrefix(msg, "🟢 <b>n8n webhook -&gt; Slack notification</b> | Upwork"))
	assert.Contains(t, msg, "⭐⭐⭐⭐⭐ 5/5 🔥 strong pick")
	assert.Contains(t, msg, "⭐☆☆☆☆ 1/5 (very easy)")
	assert.Contains(t, msg, "Need n8n webhook -&gt; Slack &lt;urgent&gt;")
	assert.Contains(t, msg, "💰 Budget: <b>$75</b>")
	assert.Contains(t, msg, "  • Import the workflow\n  • Connect Slack")
	assert.Contains(t, msg, "<code>"+strings.Repeat("p", 300)+"...</code>")
	assert.NotContains(t, msg, strings.Repeat("p", 301))
	assert.Contains(t, msg, `<a href="https://www.upwork.com/jobs/~01?a=1&amp;b=2">Open posting</a>`)
}

func TestFormatAlert_WithoutTemplate(t *testing.T) {
	sp := alert()
	sp.Classification.Template = nil
	sp.Posting.BudgetText = ""
	sp.Posting.Source = domain.SourceFreelancer

	msg := notify.FormatAlert(sp)
	assert.True(t, strings.HasPrefix(msg, "🔵 <b>Easy job</b> | Freelancer"))
	assert.Contains(t, msg, "Budget: <b>not stated</b>")
	assert.NotContains(t, msg, "Prompt:")
}

func TestLimitMessage(t *testing.T) {
	short := strings.Repeat("a", notify.MaxMessageRunes)
	assert.Equal(t, short, notify.LimitMessage(short))

	long := strings.Repeat("가", 5000)
	got := notify.LimitMessage(long)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), notify.MaxMessageRunes)
	assert.True(t, strings.HasSuffix(got, "(message truncated)"))
}

func TestStarsAndLabels(t *testing.T) {
	assert.Equal(t, "⭐⭐⭐☆☆", notify.Stars(3))
	assert.Equal(t, "☆☆☆☆☆", notify.Stars(-2))
	assert.Equal(t, "⭐⭐⭐⭐⭐", notify.Stars(9))
	assert.Equal(t, "hard", notify.DifficultyLabel(4))
	assert.Equal(t, "medium", notify.DifficultyLabel(0))
}

func TestFormatSummary(t *testing.T) {
	got := notify.FormatSummary(notify.Summary{Fetched: 40, New: 12, Easy: 4, Selected: 3, Sent: 3, Next: "in 4h"})
	assert.Contains(t, got, "New postings: 12 (of 40 fetched)")
	assert.Contains(t, got, "Alerts sent: 3")
	assert.True(t, strings.HasSuffix(got, "Next search: in 4h"))

	assert.Contains(t, notify.FormatSummary(notify.Summary{}), "No new easy postings")
}
