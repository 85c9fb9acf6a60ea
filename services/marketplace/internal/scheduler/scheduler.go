// Package scheduler runs the featured-listing expiry job on a cron spec.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/soberstay/marketplace/pkg/logger"
)

// Expirer deactivates featured records whose end date has passed.
type Expirer interface {
	ExpireFeatured(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	spec    string
	timeout time.Duration
	now     func() time.Time
}

func New(expirer Expirer, spec string) *Scheduler {
	l := cronLogger{logger.Default().With("component", "scheduler")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		expirer: expirer,
		spec:    spec,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
}

// Start registers the job and starts the cron loop. ctx scopes every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid featured expiry spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.InfoContext(ctx, "Scheduler started", "spec", s.spec)
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

// RunOnce expires due featured records and returns how many were touched.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.expirer.ExpireFeatured(ctx, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "Featured expiry run failed", "error", err)
		return 0
	}
	if n > 0 {
		logger.InfoContext(ctx, "Featured expiry run finished", "expired", n)
	}
	return n
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
