package upwork

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/scrape/util"
)

const (
	DefaultURL     = "https://www.upwork.com/ab/feed/jobs/rss?q={keyword}&sort=recency"
	descriptionCap = 500
)

type Config struct {
	URL       string // {keyword} is replaced with the escaped keyword
	ItemLimit int    // 0 = whole feed
}

// Fetcher reads the Upwork job search RSS feed.
type Fetcher struct {
	cfg Config
	hc  *http.Client
	lim *util.HostLimiter
}

func New(cfg Config, hc *http.Client, lim *util.HostLimiter) *Fetcher {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{cfg: cfg, hc: hc, lim: lim}
}

func (f *Fetcher) Name() string { return string(domain.SourceUpwork) }

func (f *Fetcher) Fetch(ctx context.Context, keyword string) ([]domain.Posting, error) {
	feedURL := util.ExpandKeyword(f.cfg.URL, keyword)
	if err := f.lim.WaitURL(ctx, feedURL); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.UserAgent = "Mozilla/5.0"
	fp.Client = f.hc

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("upwork feed %q: %w", keyword, err)
	}

	var out []domain.Posting
	for _, it := range feed.Items {
		if f.cfg.ItemLimit > 0 && len(out) >= f.cfg.ItemLimit {
			break
		}
		raw := it.Description
		if raw == "" {
			raw = it.Content
		}
		text := util.StripTags(raw)

		out = append(out, domain.Posting{
			Source:      domain.SourceUpwork,
			Title:       util.CleanText(it.Title),
			Description: util.Truncate(text, descriptionCap),
			BudgetText:  util.ExtractBudget(text),
			Link:        util.CanonicalURL(strings.TrimSpace(it.Link)),
			Keyword:     keyword,
		})
	}
	return out, nil
}
