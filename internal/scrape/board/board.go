// Package board scrapes job boards that only offer HTML search pages,
// driven by CSS selectors from config.
package board

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/scrape/util"
)

const descriptionCap = 500

// Config mirrors config.HTMLBoard. Title, Description and Budget select
// text inside an item; Link selects an element whose href is used.
type Config struct {
	Name        string
	Source      domain.Source
	URL         string // {keyword} is replaced with the escaped keyword
	BaseURL     string // relative hrefs resolve against it; defaults to URL
	ItemLimit   int
	Item        string
	Title       string
	Link        string
	Description string
	Budget      string
}

type Scraper struct {
	cfg Config
	hc  *http.Client
	lim *util.HostLimiter
}

func New(cfg Config, hc *http.Client, lim *util.HostLimiter) *Scraper {
	if cfg.Source == "" {
		cfg.Source = domain.SourceHTML
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.Source)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Scraper{cfg: cfg, hc: hc, lim: lim}
}

func (s *Scraper) Name() string { return s.cfg.Name }

func (s *Scraper) Fetch(ctx context.Context, keyword string) ([]domain.Posting, error) {
	pageURL := util.ExpandKeyword(s.cfg.URL, keyword)
	if err := s.lim.WaitURL(ctx, pageURL); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s get: %w", s.cfg.Name, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%s status %d", s.cfg.Name, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s parse html: %w", s.cfg.Name, err)
	}

	base := s.cfg.BaseURL
	if base == "" {
		base = pageURL
	}

	seen := map[string]bool{}
	var out []domain.Posting
	doc.Find(s.cfg.Item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if s.cfg.ItemLimit > 0 && len(out) >= s.cfg.ItemLimit {
			return false
		}

		title := util.CleanText(item.Find(s.cfg.Title).First().Text())
		href, _ := item.Find(s.cfg.Link).First().Attr("href")
		if href == "" {
			// the item itself may be the anchor
			href, _ = item.Attr("href")
		}
		link := util.CanonicalURL(util.Resolve(base, href))
		if title == "" || link == "" || seen[link] {
			return true
		}
		seen[link] = true

		p := domain.Posting{
			Source:  s.cfg.Source,
			Title:   title,
			Link:    link,
			Keyword: keyword,
		}
		if s.cfg.Description != "" {
			p.Description = util.Truncate(util.CleanText(item.Find(s.cfg.Description).First().Text()), descriptionCap)
		}
		if s.cfg.Budget != "" {
			p.BudgetText = util.CleanText(item.Find(s.cfg.Budget).First().Text())
		}
		if p.BudgetText == "" {
			p.BudgetText = util.ExtractBudget(p.Description)
		}
		out = append(out, p)
		return true
	})
	return out, nil
}
