// Package cron runs a job once at startup and then daily at a fixed time.
package cron

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/umass-dining/dining"
)

// Job is a scheduled unit of work. Its errors are logged, never propagated.
type Job func(ctx context.Context) error

// ParseDailySpec converts a 24-hour "HH:MM" time of day into a standard
// five-field cron spec.
func ParseDailySpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", dining.Errorf(dining.EINVALID, "invalid time of day %q, want HH:MM", at)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// Scheduler runs a Job immediately and then on a daily schedule. A run that
// starts while the previous one is still going is skipped.
type Scheduler struct {
	Logger   *slog.Logger
	Location *time.Location

	cron    *cron.Cron
	running sync.Mutex
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler using the local time zone.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{Logger: logger, Location: time.Local}
}

// Start runs job once now and then every day at the given "HH:MM".
// Start does not block; call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context, at string, job Job) error {
	spec, err := ParseDailySpec(at)
	if err != nil {
		return err
	}

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	s.cron = cron.New(cron.WithLocation(loc))
	if _, err := s.cron.AddFunc(spec, func() { s.run(ctx, job) }); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, job)
	}()

	s.cron.Start()
	s.logger().Info("scheduler started", "at", at, "spec", spec, "next", s.cron.Entries()[0].Next)
	return nil
}

// Stop stops future runs and waits for a running job to return.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	logger := s.logger()
	if !s.running.TryLock() {
		logger.Warn("previous run still in progress, skipping")
		return
	}
	defer s.running.Unlock()

	if ctx.Err() != nil {
		return
	}

	begin := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled run panicked", "panic", r, "duration", time.Since(begin))
		}
	}()

	if err := job(ctx); err != nil {
		logger.Error("scheduled run failed", "duration", time.Since(begin), "err", err)
		return
	}
	logger.Info("scheduled run finished", "duration", time.Since(begin))
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}
