// Package scheduler runs the poll task on a cron spec.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Task func(ctx context.Context) error

// Scheduler wraps robfig/cron. Overlapping runs are skipped, not queued.
type Scheduler struct {
	cron *cron.Cron
	spec string // cron spec, e.g. "@every 4h"
	name string
	task Task
	log  *slog.Logger
	id   cron.EntryID
}

func New(spec, name string, task Task, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	clog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelInfo))
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		spec: spec,
		name: name,
		task: task,
		log:  log,
	}
}

// Start registers the task, starts the scheduler and, when runNow is set,
// runs the task once right away without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	id, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.id = id

	s.cron.Start()
	s.log.Info("scheduler started", "task", s.name, "spec", s.spec, "next", s.Next())

	if runNow {
		go s.run(ctx)
	}
	return nil
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped", "task", s.name)
}

// Next is the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	if s.id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.id).Next
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.task(ctx); err != nil {
		s.log.ErrorContext(ctx, "scheduled task failed", "task", s.name, "error", err)
	}
}
