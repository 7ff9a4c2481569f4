package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/cms-be/internal/backup"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BackupRunner is the operation the scheduler triggers.
type BackupRunner interface {
	RunBackup(ctx context.Context) (backup.Report, error)
}

// Scheduler runs the posts backup on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	runner  BackupRunner
	timeout time.Duration
}

// New creates a scheduler that runs runner according to the standard
// five-field cron expression spec. Overlapping runs are skipped.
func New(spec string, runner BackupRunner, timeout time.Duration) (*Scheduler, error) {
	logger := cronLogger{log.Logger.With().Str("component", "scheduler").Logger()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	s := &Scheduler{cron: c, runner: runner, timeout: timeout}
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Msg("Starting backup scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Stopped backup scheduler.")
}

// Next reports when the backup will run next. It is zero before Run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.runner.RunBackup(ctx)
	switch {
	case errors.Is(err, backup.ErrAlreadyRunning):
		log.Warn().Msg("Scheduler: skipping backup, another run is in progress")
	case err != nil:
		log.Error().Err(err).Msg("Scheduler: scheduled backup failed")
	default:
		log.Info().
			Int("post_count", report.Snapshot.Count).
			Int("deleted", report.Sweep.Deleted).
			Msg("Scheduler: scheduled backup finished")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
