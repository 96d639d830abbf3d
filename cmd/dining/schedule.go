package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/umass-dining/dining"
	"github.com/umass-dining/dining/cron"
)

// Run executes the schedule command. It blocks until interrupted.
func (c *ScheduleCmd) Run(deps *Dependencies) error {
	if c.RetentionDays < 0 {
		err := dining.Errorf(dining.EINVALID, "retention days must be non-negative")
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler(deps.Logger)
	if err := scheduler.Start(ctx, c.At, c.job(deps)); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Scraping daily at %s. Press Ctrl+C to stop.\n", c.At)

	<-ctx.Done()
	scheduler.Stop()

	fmt.Fprintln(deps.Stdout, "Scheduler stopped")
	return nil
}

// job scrapes today's menu and then prunes old menus. A prune runs even when
// the scrape fails.
func (c *ScheduleCmd) job(deps *Dependencies) cron.Job {
	return func(ctx context.Context) error {
		date, err := resolveDate("", deps.Now)
		if err != nil {
			return err
		}

		s := *deps.Scraper
		s.SkipExisting = true
		_, scrapeErr := s.Run(ctx, date)
		if scrapeErr != nil {
			scrapeErr = fmt.Errorf("scrape %s: %w", dining.FormatDate(date), scrapeErr)
		}

		if _, err := deps.Scraper.Prune(ctx, c.RetentionDays); err != nil {
			if scrapeErr != nil {
				return scrapeErr
			}
			return err
		}
		return scrapeErr
	}
}
