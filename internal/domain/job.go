package domain

import "strings"

type Source string

const (
	SourceUpwork     Source = "upwork"
	SourceFreelancer Source = "freelancer"
	SourceKmong      Source = "kmong"
	SourceHTML       Source = "html"
)

// Posting is one observed job advertisement as handed over by a fetcher.
// Description may already be truncated.
type Posting struct {
	Source      Source
	Title       string
	Description string
	BudgetText  string
	Link        string
	Keyword     string // search keyword that surfaced the posting
}

// Text is the lowercased title + description blob every keyword rule matches against.
func (p Posting) Text() string {
	return strings.ToLower(p.Title + " " + p.Description)
}

// Valid reports whether the posting can be fingerprinted.
func (p Posting) Valid() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Link) != ""
}
