// Package notify delivers selected postings to the operator.
package notify

import (
	"context"
	"log/slog"

	"gighunt-engine/internal/domain"
)

// Notifier sends alerts in order and reports how many went out. It stops
// at the first hard failure.
type Notifier interface {
	Notify(ctx context.Context, alerts []domain.ScoredPosting) (sent int, err error)
}

// Summary is the end-of-run recap some notifiers can send.
type Summary struct {
	Fetched  int
	New      int
	Easy     int
	Selected int
	Sent     int
	Next     string // human hint for the next run, may be empty
}

type SummaryNotifier interface {
	NotifySummary(ctx context.Context, s Summary) error
}

// LogNotifier writes alerts to the log instead of sending them. Dry runs
// use it.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Log != nil {
		return n.Log
	}
	return slog.Default()
}

func (n LogNotifier) Notify(ctx context.Context, alerts []domain.ScoredPosting) (int, error) {
	for i, a := range alerts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		tmpl := ""
		if a.Classification.Template != nil {
			tmpl = a.Classification.Template.Key
		}
		n.logger().InfoContext(ctx, "alert",
			"rank", i+1,
			"source", a.Posting.Source,
			"title", a.Posting.Title,
			"template", tmpl,
			"recommendation", a.Score.Recommendation,
			"difficulty", a.Score.Difficulty,
			"budget", a.Posting.BudgetText,
			"link", a.Posting.Link)
	}
	return len(alerts), nil
}

func (n LogNotifier) NotifySummary(ctx context.Context, s Summary) error {
	n.logger().InfoContext(ctx, "run summary",
		"fetched", s.Fetched, "new", s.New, "easy", s.Easy, "selected", s.Selected, "sent", s.Sent)
	return nil
}
