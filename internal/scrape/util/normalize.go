package util

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// StripTags renders an HTML fragment (feed descriptions mostly) to plain,
// whitespace-collapsed text. Entities are decoded.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return CleanText(fragment)
	}
	// block-level breaks would otherwise glue words together
	r := strings.NewReplacer("<br>", " <br>", "<br/>", " <br/>", "<br />", " <br />", "</p>", " </p>", "</li>", " </li>")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.Replace(fragment)))
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
