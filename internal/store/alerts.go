package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gighunt-engine/internal/domain"
)

// DefaultRetention is how long alert history is kept.
const DefaultRetention = 90 * 24 * time.Hour

type Alert struct {
	ID             int64     `json:"id"`
	Fingerprint    string    `json:"fingerprint"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	Link           string    `json:"link"`
	Budget         string    `json:"budget"`
	TemplateKey    string    `json:"templateKey"`
	TemplateName   string    `json:"templateName"`
	Origin         string    `json:"origin"`
	Confidence     float64   `json:"confidence"`
	Difficulty     int       `json:"difficulty"`
	Recommendation int       `json:"recommendation"`
	Notified       bool      `json:"notified"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ListAlertsOpts struct {
	Sort   string // date | recommendation | difficulty
	Window string // 24h | 7d | all
	Limit  int
}

func AlertFromScored(sp domain.ScoredPosting, notified bool, now time.Time) Alert {
	a := Alert{
		Fingerprint:    sp.Fingerprint,
		Source:         string(sp.Posting.Source),
		Title:          sp.Posting.Title,
		Link:           sp.Posting.Link,
		Budget:         sp.Posting.BudgetText,
		Origin:         string(sp.Classification.Origin),
		Confidence:     sp.Classification.Confidence,
		Difficulty:     sp.Score.Difficulty,
		Recommendation: sp.Score.Recommendation,
		Notified:       notified,
		CreatedAt:      now.UTC(),
	}
	if t := sp.Classification.Template; t != nil {
		a.TemplateKey = t.Key
		a.TemplateName = t.Name
	}
	if a.Origin == "" {
		a.Origin = string(domain.OriginRules)
	}
	return a
}

// InsertAlertIgnore stores a unless an alert with the same fingerprint
// exists. It reports whether a row was added.
func InsertAlertIgnore(ctx context.Context, db *sql.DB, a Alert) (bool, error) {
	if a.Fingerprint == "" {
		return false, errors.New("missing fingerprint")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO alerts(fingerprint, source, title, link, budget, template_key, template_name, origin, confidence, difficulty, recommendation, notified, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		a.Fingerprint,
		a.Source,
		a.Title,
		a.Link,
		a.Budget,
		a.TemplateKey,
		a.TemplateName,
		a.Origin,
		a.Confidence,
		a.Difficulty,
		a.Recommendation,
		a.Notified,
		a.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func ListAlerts(ctx context.Context, db *sql.DB, opts ListAlertsOpts) ([]Alert, error) {
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 200
	}

	// whitelist sort columns (prevents SQL injection)
	order := map[string]string{
		"date":           "created_at DESC, id DESC",
		"recommendation": "recommendation DESC, difficulty ASC, id DESC",
		"difficulty":     "difficulty ASC, recommendation DESC, id DESC",
	}[opts.Sort]
	if order == "" {
		order = "created_at DESC, id DESC"
	}

	var since time.Time
	switch opts.Window {
	case "24h":
		since = time.Now().Add(-24 * time.Hour)
	case "all":
	default:
		since = time.Now().Add(-7 * 24 * time.Hour)
	}

	query := fmt.Sprintf(`
SELECT id, fingerprint, source, title, link, budget, template_key, template_name, origin, confidence, difficulty, recommendation, notified, created_at
FROM alerts
WHERE created_at >= ?
ORDER BY %s
LIMIT ?;
`, order)

	rows, err := db.QueryContext(ctx, query, since.UTC().Format(time.RFC3339), opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var a Alert
		var created string
		if err := rows.Scan(&a.ID, &a.Fingerprint, &a.Source, &a.Title, &a.Link, &a.Budget,
			&a.TemplateKey, &a.TemplateName, &a.Origin, &a.Confidence,
			&a.Difficulty, &a.Recommendation, &a.Notified, &created); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CleanupOldAlerts deletes alerts created before now-retention.
func CleanupOldAlerts(ctx context.Context, db *sql.DB, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := now.Add(-retention).UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM alerts WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
