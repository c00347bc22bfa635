// Package poll runs one complete alert cycle: fetch, evaluate, notify and
// record.
package poll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/dedup"
	"gighunt-engine/internal/domain"
	"gighunt-engine/internal/events"
	"gighunt-engine/internal/llm"
	"gighunt-engine/internal/notify"
	"gighunt-engine/internal/pipeline"
	"gighunt-engine/internal/rank"
	"gighunt-engine/internal/scrape"
	"gighunt-engine/internal/store"
)

// ErrRunning is returned when a cycle is requested while one is in flight.
var ErrRunning = errors.New("poll: a run is already in progress")

type (
	FetchFunc      func(ctx context.Context, cfg config.Config) ([]domain.Posting, []scrape.SourceReport)
	SeenFunc       func(ctx context.Context, cfg config.Config) (dedup.Store, error)
	ClassifierFunc func(cfg config.Config) (pipeline.Classifier, *llm.Budget, error)
	NotifierFunc   func(cfg config.Config) (notify.Notifier, error)

	// CompleterFunc and TokenFunc resolve credentials for the current config.
	CompleterFunc func(cfg config.Config) llm.Completer
	TokenFunc     func(cfg config.Config) string
)

// RunReport describes one finished cycle.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Fetched    int       `json:"fetched"`
	pipeline.Stats
	Sent    int                   `json:"sent"`
	Stored  int                   `json:"stored"`
	Pruned  int64                 `json:"pruned"`
	Sources []scrape.SourceReport `json:"sources"`
	Error   string                `json:"error,omitempty"`
}

type Status struct {
	Running   bool       `json:"running"`
	LastRunAt string     `json:"last_run_at"`
	LastOkAt  string     `json:"last_ok_at"`
	LastError string     `json:"last_error"`
	NextRunAt string     `json:"next_run_at,omitempty"`
	Last      *RunReport `json:"last_report,omitempty"`
}

// Runner owns the per-cycle wiring. Every dependency is rebuilt from the
// current config at the start of a cycle, so config edits apply to the
// next run. At most one cycle runs at a time.
type Runner struct {
	Config     func() config.Config
	Fetch      FetchFunc
	OpenSeen   SeenFunc
	Classifier ClassifierFunc
	Notifier   NotifierFunc
	DB         *sql.DB // nil disables alert history
	Hub        *events.Hub
	Log        *slog.Logger
	DryRun     bool
	NextRun    func() time.Time
	Now        func() time.Time

	mu     sync.Mutex
	status atomic.Value // Status
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	st, _ := r.status.Load().(Status)
	if r.NextRun != nil {
		if t := r.NextRun(); !t.IsZero() {
			st.NextRunAt = t.Format(time.RFC3339)
		}
	}
	return st
}

// PollOnce runs one cycle. Source failures and notification failures do
// not stop the cycle; the returned error reports the first thing that
// kept it from finishing cleanly.
func (r *Runner) PollOnce(ctx context.Context) (RunReport, error) {
	if !r.mu.TryLock() {
		return RunReport{}, ErrRunning
	}
	defer r.mu.Unlock()

	log := r.logger()
	rep := RunReport{StartedAt: r.now(), DryRun: r.DryRun}

	st := r.Status()
	st.Running = true
	st.LastRunAt = rep.StartedAt.Format(time.RFC3339)
	r.status.Store(st)
	r.Hub.Emit("", events.TypeRunStarted, map[string]any{"dry_run": r.DryRun})

	err := r.cycle(ctx, r.Config(), &rep)

	rep.FinishedAt = r.now()
	st.Running = false
	if err != nil {
		rep.Error = err.Error()
		st.LastError = rep.Error
		log.ErrorContext(ctx, "run failed", "error", err)
	} else {
		st.LastError = ""
		st.LastOkAt = rep.FinishedAt.Format(time.RFC3339)
	}
	last := rep
	st.Last = &last
	r.status.Store(st)
	r.Hub.Emit("", events.TypeRunFinished, rep)

	log.InfoContext(ctx, "run finished",
		"fetched", rep.Fetched, "evaluated", rep.Evaluated, "easy", rep.Easy,
		"selected", rep.Selected, "sent", rep.Sent, "stored", rep.Stored,
		"dry_run", rep.DryRun, "took", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
	return rep, err
}

func (r *Runner) cycle(ctx context.Context, cfg config.Config, rep *RunReport) error {
	log := r.logger()

	cls, budget, err := r.Classifier(cfg)
	if err != nil {
		return fmt.Errorf("build classifier: %w", err)
	}
	notifier, err := r.Notifier(cfg)
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}

	postings, sources := r.Fetch(ctx, cfg)
	rep.Fetched = len(postings)
	rep.Sources = sources

	seen, err := r.OpenSeen(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open seen store: %w", err)
	}
	defer func() {
		if cerr := seen.Close(); cerr != nil {
			log.Error("closing seen store", "category", "state_corrupt", "error", cerr)
		}
	}()

	p := pipeline.Pipeline{
		Classifier:  cls,
		Scorer:      rank.NewHeuristicScorer(rank.WeightsFromConfig(cfg)),
		Seen:        seen,
		Budget:      budget,
		AlertBudget: cfg.Selection.AlertBudget,
		Floors: rank.Floors{
			MinRecommendation: cfg.Selection.MinRecommendation,
			MaxDifficulty:     cfg.Selection.MaxDifficulty,
		},
		Log: log,
	}
	selected, stats := p.Run(ctx, postings)
	rep.Stats = stats

	if err := seen.Flush(); err != nil {
		log.ErrorContext(ctx, "flushing seen store", "category", "state_corrupt", "error", err)
	}

	sent, nerr := notifier.Notify(ctx, selected)
	rep.Sent = sent
	if nerr != nil {
		log.WarnContext(ctx, "notification stopped early",
			"category", "notify_failed", "sent", sent, "selected", len(selected), "error", nerr)
	}

	r.recordHistory(ctx, cfg, selected, rep)

	if nerr == nil && cfg.Notify.Telegram.SendSummary {
		if sn, ok := notifier.(notify.SummaryNotifier); ok {
			if err := sn.NotifySummary(ctx, r.summary(*rep)); err != nil {
				log.WarnContext(ctx, "summary not sent", "category", "notify_failed", "error", err)
			}
		}
	}

	if nerr != nil {
		return fmt.Errorf("notify: %w", nerr)
	}
	return nil
}

func (r *Runner) recordHistory(ctx context.Context, cfg config.Config, selected []domain.ScoredPosting, rep *RunReport) {
	if r.DB == nil || r.DryRun {
		return
	}
	log := r.logger()
	now := r.now()

	for i, sp := range selected {
		a := store.AlertFromScored(sp, i < rep.Sent, now)
		inserted, err := store.InsertAlertIgnore(ctx, r.DB, a)
		if err != nil {
			log.WarnContext(ctx, "alert not stored", "fingerprint", sp.Fingerprint, "error", err)
			continue
		}
		if inserted {
			rep.Stored++
			r.Hub.Emit("", events.TypeAlert, a)
		}
	}

	retention := store.DefaultRetention
	if cfg.Store.RetentionDays > 0 {
		retention = time.Duration(cfg.Store.RetentionDays) * 24 * time.Hour
	}
	n, err := store.CleanupOldAlerts(ctx, r.DB, retention, now)
	if err != nil {
		log.WarnContext(ctx, "alert cleanup failed", "error", err)
		return
	}
	rep.Pruned = n
}

func (r *Runner) summary(rep RunReport) notify.Summary {
	s := notify.Summary{
		Fetched:  rep.Fetched,
		New:      rep.Evaluated,
		Easy:     rep.Easy,
		Selected: rep.Selected,
		Sent:     rep.Sent,
	}
	if r.NextRun != nil {
		if t := r.NextRun(); !t.IsZero() {
			s.Next = t.Format("2006-01-02 15:04")
		}
	}
	return s
}
