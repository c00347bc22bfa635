package freelancer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/scrape/util"
)

const (
	DefaultURL     = "https://www.freelancer.com/api/projects/0.1/projects/active/"
	projectBase    = "https://www.freelancer.com/projects/"
	descriptionCap = 500
)

type Config struct {
	URL       string
	ItemLimit int // sent as the API's limit parameter; 0 = 10
}

// Fetcher queries the public Freelancer active-projects API.
type Fetcher struct {
	cfg Config
	hc  *http.Client
	lim *util.HostLimiter
}

func New(cfg Config, hc *http.Client, lim *util.HostLimiter) *Fetcher {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.ItemLimit <= 0 {
		cfg.ItemLimit = 10
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{cfg: cfg, hc: hc, lim: lim}
}

func (f *Fetcher) Name() string { return string(domain.SourceFreelancer) }

type apiResponse struct {
	Status string `json:"status"`
	Result struct {
		Projects []project `json:"projects"`
	} `json:"result"`
}

type project struct {
	Title              string `json:"title"`
	SeoURL             string `json:"seo_url"`
	PreviewDescription string `json:"preview_description"`
	Budget             struct {
		Minimum float64 `json:"minimum"`
		Maximum float64 `json:"maximum"`
	} `json:"budget"`
}

func (f *Fetcher) Fetch(ctx context.Context, keyword string) ([]domain.Posting, error) {
	u, err := url.Parse(f.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("freelancer url: %w", err)
	}
	q := u.Query()
	q.Set("query", keyword)
	q.Set("limit", strconv.Itoa(f.cfg.ItemLimit))
	q.Set("sort_field", "time_submitted")
	u.RawQuery = q.Encode()

	if err := f.lim.WaitURL(ctx, u.String()); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("freelancer get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("freelancer status %d", res.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("freelancer decode: %w", err)
	}

	out := make([]domain.Posting, 0, len(body.Result.Projects))
	for _, p := range body.Result.Projects {
		slug := strings.TrimSpace(p.SeoURL)
		link := ""
		if slug != "" {
			link = projectBase + strings.TrimPrefix(slug, "/")
		}
		out = append(out, domain.Posting{
			Source:      domain.SourceFreelancer,
			Title:       util.CleanText(p.Title),
			Description: util.Truncate(util.CleanText(p.PreviewDescription), descriptionCap),
			BudgetText:  budgetText(p.Budget.Minimum, p.Budget.Maximum),
			Link:        link,
			Keyword:     keyword,
		})
	}
	return out, nil
}

func budgetText(lo, hi float64) string {
	if hi <= 0 {
		return ""
	}
	return fmt.Sprintf("$%d-$%d", int(lo), int(hi))
}
