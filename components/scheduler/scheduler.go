// Package scheduler runs cron jobs derived from the application
// configuration. On config reload the job set is re-derived and swapped;
// when the new configuration yields no valid schedule the old jobs keep
// running and the reload is rejected.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/keelframework/keel"
)

// ErrNilJobSource is returned from Init when the component was constructed
// without a job source.
var ErrNilJobSource = errors.New("scheduler: job source is nil")

// Job is a named piece of work on a cron schedule.
type Job struct {
	// Name identifies the job in logs.
	Name string
	// Spec is a standard five-field cron expression.
	Spec string
	// Run does the work. The context is cancelled when the scheduler shuts
	// down.
	Run func(ctx context.Context) error
}

// JobSource derives the job set from the application, typically by reading
// the active configuration. It runs at boot and again after every config
// reload.
type JobSource func(app keel.Application) ([]Job, error)

// Component schedules jobs with cron and keeps the schedule in sync with
// the configuration.
type Component struct {
	source JobSource
	logger keel.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries []cron.EntryID
}

// New creates a scheduler component deriving its jobs from source.
func New(source JobSource) *Component {
	return &Component{source: source}
}

// Name identifies the component.
func (c *Component) Name() string {
	return "scheduler"
}

// Init derives the initial job set and starts the cron runner. A panicking
// job is recovered and logged rather than crashing the process.
func (c *Component) Init(app keel.Application) error {
	if c.source == nil {
		return ErrNilJobSource
	}

	c.logger = app.Logger()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.cron = cron.New(cron.WithChain(cron.Recover(&cronLogger{logger: c.logger})))

	if err := c.schedule(app); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// AfterConfigReload re-derives the job set from the new configuration. An
// error from the source or an invalid cron spec rejects the reload and
// leaves the running schedule untouched.
func (c *Component) AfterConfigReload(_ context.Context, app keel.Application) error {
	return c.schedule(app)
}

// schedule swaps in the jobs the source currently derives. New entries are
// added before old ones are removed, so a failure on the way in never
// leaves the scheduler empty.
func (c *Component) schedule(app keel.Application) error {
	jobs, err := c.source(app)
	if err != nil {
		return fmt.Errorf("derive jobs: %w", err)
	}

	added := make([]cron.EntryID, 0, len(jobs))
	for _, job := range jobs {
		id, err := c.cron.AddFunc(job.Spec, func() { c.runJob(job) })
		if err != nil {
			for _, id := range added {
				c.cron.Remove(id)
			}
			return fmt.Errorf("schedule job %q (%s): %w", job.Name, job.Spec, err)
		}
		added = append(added, id)
	}

	c.mu.Lock()
	old := c.entries
	c.entries = added
	c.mu.Unlock()

	for _, id := range old {
		c.cron.Remove(id)
	}

	c.logger.Info("Schedule updated", "jobs", len(added))
	return nil
}

func (c *Component) runJob(job Job) {
	start := time.Now()
	c.logger.Debug("Running job", "job", job.Name)

	if err := job.Run(c.ctx); err != nil {
		c.logger.Error("Job failed", "job", job.Name, "error", err)
		return
	}
	c.logger.Debug("Job finished", "job", job.Name, "elapsed", time.Since(start))
}

// Shutdown cancels the job context, stops the cron runner, and waits for
// running jobs to finish or the shutdown context to expire.
func (c *Component) Shutdown(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	c.cancel()
	stopped := c.cron.Stop()

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// cronLogger adapts a keel.Logger to the cron.Logger interface used by the
// panic recovery chain.
type cronLogger struct {
	logger keel.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
