package scrape

import (
	"net/http"
	"time"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/scrape/board"
	"gighunt-engine/internal/scrape/freelancer"
	"gighunt-engine/internal/scrape/upwork"
	"gighunt-engine/internal/scrape/util"
)

// FromConfig builds the enabled sources in a fixed order: Upwork,
// Freelancer, then HTML boards as listed. All share one per-host limiter.
func FromConfig(cfg config.Config, hc *http.Client) []Source {
	lim := util.NewHostLimiter(cfg.Polling.RequestsPerSec, 1)
	timeout := time.Duration(cfg.Polling.TimeoutSeconds) * time.Second

	keywordsFor := func(own []string, limit int) []string {
		kws := own
		if len(kws) == 0 {
			kws = cfg.Polling.Keywords
		}
		return LimitKeywords(kws, limit)
	}

	var out []Source
	if s := cfg.Sources.Upwork; s.Enabled {
		out = append(out, Source{
			Fetcher:  upwork.New(upwork.Config{URL: s.URL, ItemLimit: s.ItemLimit}, hc, lim),
			Keywords: keywordsFor(s.Keywords, s.KeywordLimit),
			Timeout:  timeout,
		})
	}
	if s := cfg.Sources.Freelancer; s.Enabled {
		out = append(out, Source{
			Fetcher:  freelancer.New(freelancer.Config{URL: s.URL, ItemLimit: s.ItemLimit}, hc, lim),
			Keywords: keywordsFor(s.Keywords, s.KeywordLimit),
			Timeout:  timeout,
		})
	}
	for _, b := range cfg.Sources.Boards {
		if !b.Enabled {
			continue
		}
		src := domain.Source(b.SourceMarker)
		if src == "" {
			src = domain.SourceHTML
		}
		out = append(out, Source{
			Fetcher: board.New(board.Config{
				Name:        b.Name,
				Source:      src,
				URL:         b.URL,
				BaseURL:     b.BaseURL,
				ItemLimit:   b.ItemLimit,
				Item:        b.Item,
				Title:       b.Title,
				Link:        b.Link,
				Description: b.Description,
				Budget:      b.Budget,
			}, hc, lim),
			Keywords: keywordsFor(b.Keywords, 0),
			Timeout:  timeout,
		})
	}
	return out
}
