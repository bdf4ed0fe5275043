// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher recomputes a cached payload set, such as stats.Service.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	c      *cron.Cron
	logger *slog.Logger
}

// New returns a stopped scheduler. A job still running when its next
// activation comes due is skipped rather than run twice.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger.With("component", "scheduler")}
	return &Scheduler{
		c:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// AddRefresh runs r.Refresh on the standard 5-field cron spec, bounding each
// run by timeout.
func (s *Scheduler) AddRefresh(spec, name string, r Refresher, timeout time.Duration) error {
	id, err := s.c.AddJob(spec, s.refreshJob(name, r, timeout))
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.logger.Info("scheduler: job added", "job", name, "cron", spec, "entry_id", int(id))
	return nil
}

func (s *Scheduler) refreshJob(name string, r Refresher, timeout time.Duration) cron.Job {
	return cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		if err := r.Refresh(ctx); err != nil {
			s.logger.Error("scheduler: job failed", "job", name, "duration", time.Since(start), "error", err)
			return
		}
		s.logger.Debug("scheduler: job done", "job", name, "duration", time.Since(start))
	})
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.c.Entries()) }

func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
