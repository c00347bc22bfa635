package notify

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"gighunt-engine/internal/domain"
)

const (
	MaxMessageRunes = 4000
	truncatedKeep   = 3900
	promptPreview   = 300
	titlePreview    = 80
	rule            = "━━━━━━━━━━━━━━━━━━━━"
)

var platforms = map[domain.Source]struct{ marker, name string }{
	domain.SourceUpwork:     {"🟢", "Upwork"},
	domain.SourceFreelancer: {"🔵", "Freelancer"},
	domain.SourceKmong:      {"🟠", "Kmong"},
}

func platform(s domain.Source) (marker, name string) {
	if p, ok := platforms[s]; ok {
		return p.marker, p.name
	}
	if s == "" {
		return "⚪", "Unknown"
	}
	return "⚪", string(s)
}

func Stars(n int) string {
	n = min(max(n, 0), 5)
	return strings.Repeat("⭐", n) + strings.Repeat("☆", 5-n)
}

func DifficultyLabel(level int) string {
	switch level {
	case 1:
		return "very easy"
	case 2:
		return "easy"
	case 3:
		return "medium"
	case 4:
		return "hard"
	case 5:
		return "very hard"
	}
	return "medium"
}

func difficultyMarker(level int) string {
	switch {
	case level <= 2:
		return "🟢"
	case level == 3:
		return "🟡"
	case level == 4:
		return "🟠"
	}
	return "🔴"
}

func recommendationComment(rec int) string {
	switch {
	case rec >= 5:
		return "🔥 strong pick"
	case rec >= 4:
		return "💎 recommended"
	case rec >= 3:
		return "👍 worth a try"
	}
	return "🤔 think twice"
}

// FormatAlert renders one alert as Telegram HTML. Posting and template
// text is escaped; the result never exceeds MaxMessageRunes.
func FormatAlert(sp domain.ScoredPosting) string {
	p := sp.Posting
	marker, name := platform(p.Source)

	var g domain.Guidance
	heading := "Easy job"
	if t := sp.Classification.Template; t != nil {
		g = t.Guidance
		if t.Name != "" {
			heading = t.Name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b> | %s\n\n", marker, esc(heading), name)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "⭐ <b>Recommendation:</b> %s %d/5 %s\n",
		Stars(sp.Score.Recommendation), sp.Score.Recommendation, recommendationComment(sp.Score.Recommendation))
	fmt.Fprintf(&b, "%s <b>Difficulty:</b> %s %d/5 (%s)\n",
		difficultyMarker(sp.Score.Difficulty), Stars(sp.Score.Difficulty), sp.Score.Difficulty, DifficultyLabel(sp.Score.Difficulty))
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "📌 <b>%s</b>\n\n", esc(cut(p.Title, titlePreview, "")))

	budget := p.BudgetText
	if budget == "" {
		budget = "not stated"
	}
	fmt.Fprintf(&b, "💰 Budget: <b>%s</b>\n", esc(budget))
	if g.PriceRange != "" {
		fmt.Fprintf(&b, "💵 Expected: <b>%s</b>\n", esc(g.PriceRange))
	}
	if g.TimeEstimate != "" {
		fmt.Fprintf(&b, "⏱️ Time: <b>%s</b>\n", esc(g.TimeEstimate))
	}

	if g.ClientWants != "" {
		fmt.Fprintf(&b, "\n🎯 <b>Client wants:</b>\n%s\n", esc(g.ClientWants))
	}
	writeList(&b, "👤 <b>Your tasks:</b>", g.OperatorTasks)
	writeList(&b, "🤖 <b>Generated for you:</b>", g.GeneratedTasks)

	if g.Prompt != "" {
		fmt.Fprintf(&b, "\n💻 <b>Prompt:</b>\n<code>%s</code>\n", esc(cut(strings.TrimSpace(g.Prompt), promptPreview, "...")))
	}
	if g.OutputType != "" {
		fmt.Fprintf(&b, "\n📦 <b>Output:</b> %s\n", esc(g.OutputType))
	}
	if g.Delivery != "" {
		fmt.Fprintf(&b, "📤 <b>Delivery:</b> %s\n", esc(g.Delivery))
	}

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Open posting</a>", esc(p.Link))

	return LimitMessage(b.String())
}

// FormatSummary renders the end-of-run recap.
func FormatSummary(s Summary) string {
	var b strings.Builder
	if s.Sent > 0 {
		b.WriteString("📊 <b>Search finished</b>\n\n")
		fmt.Fprintf(&b, "🆕 New postings: %d (of %d fetched)\n", s.New, s.Fetched)
		fmt.Fprintf(&b, "✅ Easy: %d\n", s.Easy)
		fmt.Fprintf(&b, "📤 Alerts sent: %d\n", s.Sent)
		b.WriteString("\n💡 <b>Workflow:</b>\n1. Check the posting\n2. Paste the prompt into your assistant\n3. Review the result\n4. Deliver to the client\n")
	} else {
		b.WriteString("📊 <b>Search finished</b>\n\nNo new easy postings this time.\n")
	}
	if s.Next != "" {
		fmt.Fprintf(&b, "\n⏰ Next search: %s", esc(s.Next))
	}
	return strings.TrimSpace(b.String())
}

// LimitMessage keeps Telegram's message cap: longer text is cut and
// marked as truncated.
func LimitMessage(msg string) string {
	if utf8.RuneCountInString(msg) <= MaxMessageRunes {
		return msg
	}
	return string([]rune(msg)[:truncatedKeep]) + "\n\n... (message truncated)"
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "  • %s\n", esc(it))
	}
}

func cut(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + suffix
}

func esc(s string) string { return html.EscapeString(s) }
