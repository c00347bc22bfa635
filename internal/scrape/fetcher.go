// Package scrape collects postings from the configured job sources.
package scrape

import (
	"context"
	"time"

	"gighunt-engine/internal/domain"
)

// Fetcher searches one job source for a single keyword.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, keyword string) ([]domain.Posting, error)
}

// Source is a fetcher plus the keywords it runs for.
type Source struct {
	Fetcher  Fetcher
	Keywords []string
	Timeout  time.Duration
}

// SourceReport summarizes one source's part of a fetch round.
type SourceReport struct {
	Name     string `json:"name"`
	Postings int    `json:"postings"`
	Failures int    `json:"failures"`
	LastErr  string `json:"last_error,omitempty"`
}
