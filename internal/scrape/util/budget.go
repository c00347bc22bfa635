package util

import (
	"regexp"
	"strings"
)

var (
	labeledBudget = regexp.MustCompile(`(?i)budget[:\s]*\$?\s*([\d,]+)`)
	rangeBudget   = regexp.MustCompile(`\$\s*([\d,]+)(?:\.\d+)?\s*-\s*\$\s*([\d,]+)`)
	singleBudget  = regexp.MustCompile(`\$\s*([\d,]+)`)
)

// ExtractBudget pulls a budget hint out of a plain-text description:
// "Budget: $500" -> "$500", "$15-$30" -> "$15-$30", a bare "Hourly" ->
// "Hourly", else the first "$n". Thousands separators are dropped so the
// tier substrings (1000, 5000, ...) match. Returns "" when nothing is found.
func ExtractBudget(text string) string {
	if m := labeledBudget.FindStringSubmatch(text); m != nil && digits(m[1]) != "" {
		return "$" + digits(m[1])
	}
	if m := rangeBudget.FindStringSubmatch(text); m != nil {
		return "$" + digits(m[1]) + "-$" + digits(m[2])
	}
	if strings.Contains(text, "Hourly") {
		return "Hourly"
	}
	if m := singleBudget.FindStringSubmatch(text); m != nil && digits(m[1]) != "" {
		return "$" + digits(m[1])
	}
	return ""
}

func digits(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
