package scrape

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gighunt-engine/internal/domain"
)

const defaultSourceTimeout = 2 * time.Minute

// FetchAll runs every source concurrently and returns their postings in
// source order, keywords in configured order. A failing keyword or source
// only costs its own postings.
func FetchAll(ctx context.Context, sources []Source, log *slog.Logger) ([]domain.Posting, []SourceReport) {
	if log == nil {
		log = slog.Default()
	}

	results := make([][]domain.Posting, len(sources))
	reports := make([]SourceReport, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			timeout := src.Timeout
			if timeout <= 0 {
				timeout = defaultSourceTimeout
			}
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			name := src.Fetcher.Name()
			rep := SourceReport{Name: name}
			var got []domain.Posting

			for _, kw := range src.Keywords {
				if fctx.Err() != nil {
					rep.Failures++
					rep.LastErr = fctx.Err().Error()
					log.WarnContext(ctx, "source stopped early",
						"category", "fetch_failed", "source", name, "keyword", kw, "error", fctx.Err())
					break
				}
				ps, err := src.Fetcher.Fetch(fctx, kw)
				if err != nil {
					rep.Failures++
					rep.LastErr = err.Error()
					log.WarnContext(ctx, "fetch failed",
						"category", "fetch_failed", "source", name, "keyword", kw, "error", err)
					continue // best-effort: don't cancel siblings
				}
				log.DebugContext(ctx, "fetched", "source", name, "keyword", kw, "postings", len(ps))
				got = append(got, ps...)
			}

			rep.Postings = len(got)
			results[i] = got
			reports[i] = rep
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.Posting
	for _, ps := range results {
		all = append(all, ps...)
	}
	return all, reports
}

// LimitKeywords returns the first limit keywords; limit <= 0 keeps all.
func LimitKeywords(kws []string, limit int) []string {
	if limit <= 0 || len(kws) <= limit {
		return kws
	}
	return kws[:limit]
}
