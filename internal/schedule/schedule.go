// Package schedule wraps cron so a file-backed batch can be re-run on a
// fixed cadence, e.g. a nightly repricing pass.
package schedule

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner executes a task on a standard five-field cron schedule.
type Runner struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Runner for the given cron spec and task. The spec is
// validated before the Runner is returned.
func New(spec string, task func(), logger *slog.Logger) (*Runner, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, task); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Runner{cron: c, logger: logger}, nil
}

// Start begins the schedule.
func (r *Runner) Start() {
	r.cron.Start()
	if len(r.cron.Entries()) > 0 {
		r.logger.Info("schedule started", "next_run", r.cron.Entries()[0].Next)
	}
}

// Stop halts the schedule. Any run already in progress finishes.
func (r *Runner) Stop() {
	r.cron.Stop()
	r.logger.Info("schedule stopped")
}
