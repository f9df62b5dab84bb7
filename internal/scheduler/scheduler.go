// Package scheduler repeats a job on a cron schedule. A tick that fires while
// the previous run is still going is skipped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New registers job under schedule ("@every 1h", "0 */2 * * *", ...). The job
// receives ctx on every tick.
func New(ctx context.Context, schedule string, job func(context.Context), log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	cl := cronLogger{log: log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(schedule, func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("scheduler started", "next", e.Next)
	}
}

// Stop prevents new ticks and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
