// Package scrape orchestrates a daily menu scrape: it fetches every hall and
// meal page in turn, extracts menu items and hands them to storage in one
// batch.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/umass-dining/dining"
	"golang.org/x/time/rate"
)

// DefaultPoliteness is the default pause between page fetches.
const DefaultPoliteness = time.Second

// Scraper scrapes menus for one date.
type Scraper struct {
	Fetcher   dining.Fetcher
	Extractor dining.MenuExtractor
	Menus     dining.MenuItemService
	Logger    *slog.Logger

	// BaseURL is the menu site root; pages live at BaseURL/slug/YYYY-MM-DD.
	BaseURL string

	// Halls and Meals default to every hall and meal.
	Halls []dining.Hall
	Meals []dining.MealType

	RetryDelays []time.Duration

	// Politeness is the pause between the end of one page fetch and the
	// start of the next. It is also the minimum interval between starts.
	Politeness time.Duration

	// SkipExisting skips the run when items are already stored for the date.
	SkipExisting bool

	// Progress, if set, receives an event per page.
	Progress ProgressFunc
}

// Result holds the outcome of a scrape run.
type Result struct {
	Pages     int
	Failed    int
	Degraded  int
	Extracted int
	Saved     int
	Skipped   bool
}

// ProgressEvent reports the outcome of one page.
type ProgressEvent struct {
	Completed int
	Total     int
	HallID    dining.HallID
	MealType  dining.MealType
	Items     int
	Error     error
}

// ProgressFunc is a callback for reporting scrape progress.
type ProgressFunc func(event ProgressEvent)

// Run scrapes every configured hall and meal for date and saves the items.
// A failing page is logged and counted; it never stops the run. Run returns
// an error only when the context ends, the existence check fails or storage
// accepts none of the items.
func (s *Scraper) Run(ctx context.Context, date time.Time) (*Result, error) {
	date = dining.Date(date)
	logger := s.logger().With("date", dining.FormatDate(date))

	if s.SkipExisting {
		exists, err := s.Menus.MenuExistsForDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("checking existing menu: %w", err)
		}
		if exists {
			logger.Info("menu already stored, skipping")
			return &Result{Skipped: true}, nil
		}
	}

	halls := s.Halls
	if len(halls) == 0 {
		halls = dining.Halls()
	}
	meals := s.Meals
	if len(meals) == 0 {
		meals = dining.MealTypes()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.Politeness > 0 {
		limiter = rate.NewLimiter(rate.Every(s.Politeness), 1)
	}

	result := &Result{}
	total := len(halls) * len(meals)
	var items []*dining.MenuItem

	for _, hall := range halls {
		for _, meal := range meals {
			if result.Pages > 0 {
				if err := pause(ctx, s.Politeness); err != nil {
					return nil, err
				}
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}

			extracted, err := s.scrapePage(ctx, hall, meal, date)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			result.Pages++

			event := ProgressEvent{Completed: result.Pages, Total: total, HallID: hall.ID, MealType: meal}
			if err != nil {
				result.Failed++
				event.Error = err
				logger.Warn("page failed", "hall", hall.ID, "meal", meal, "err", err)
			} else {
				if extracted.Degraded {
					result.Degraded++
					logger.Warn("meal section not found, scanned whole page", "hall", hall.ID, "meal", meal, "section", extracted.Section)
				}
				items = append(items, extracted.Items...)
				event.Items = len(extracted.Items)
			}
			s.report(event)
		}
	}

	items = dedupe(items)
	result.Extracted = len(items)
	if len(items) == 0 {
		logger.Warn("no menu items extracted", "pages", result.Pages, "failed", result.Failed)
		return result, nil
	}

	saved, err := s.Menus.UpsertMenuItems(ctx, items)
	result.Saved = saved
	if err != nil {
		if saved == 0 {
			return nil, fmt.Errorf("saving menu items: %w", err)
		}
		logger.Warn("some menu items were not saved", "saved", saved, "extracted", len(items), "err", err)
	}

	logger.Info("scrape finished",
		"pages", result.Pages,
		"failed", result.Failed,
		"degraded", result.Degraded,
		"extracted", result.Extracted,
		"saved", result.Saved,
	)
	return result, nil
}

// Prune deletes stored items dated more than days before today.
func (s *Scraper) Prune(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, dining.Errorf(dining.EINVALID, "retention days must be non-negative")
	}
	n, err := s.Menus.DeleteMenuItemsOlderThan(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("pruning menu items: %w", err)
	}
	s.logger().Info("pruned old menu items", "days", days, "deleted", n)
	return n, nil
}

// scrapePage fetches and extracts one hall/meal page. Panics are recovered
// and returned as EINTERNAL errors.
func (s *Scraper) scrapePage(ctx context.Context, hall dining.Hall, meal dining.MealType, date time.Time) (result *dining.ExtractResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = dining.Errorf(dining.EINTERNAL, "panic scraping %s %s: %v", hall.ID, meal, r)
		}
	}()

	url := hall.MenuURL(s.BaseURL, date)
	html, err := FetchWithRetryDelays(ctx, url, s.Fetcher.Fetch, s.logger().Warn, s.RetryDelays)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if strings.TrimSpace(html) == "" {
		return &dining.ExtractResult{}, nil
	}

	result, err = s.Extractor.ExtractMenu(&dining.MenuPage{
		HTML:     html,
		HallID:   hall.ID,
		MealType: meal,
		MenuDate: date,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", url, err)
	}
	return result, nil
}

// pause waits d after a page finishes, so a slow page is still followed by
// the full delay. It returns early with the context error.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Scraper) report(event ProgressEvent) {
	if s.Progress != nil {
		s.Progress(event)
	}
}

// dedupe collapses items sharing an identity into the last occurrence,
// keeping the position of the first.
func dedupe(items []*dining.MenuItem) []*dining.MenuItem {
	index := make(map[dining.MenuItemKey]int, len(items))
	out := make([]*dining.MenuItem, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if i, ok := index[key]; ok {
			out[i] = item
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}
