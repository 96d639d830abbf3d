package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/umass-dining/dining"
)

// Ensure LoggingMenuItemService implements dining.MenuItemService.
var _ dining.MenuItemService = (*LoggingMenuItemService)(nil)

// LoggingMenuItemService wraps a MenuItemService with logging of writes.
// Reads are delegated without logging.
type LoggingMenuItemService struct {
	next   dining.MenuItemService
	logger *slog.Logger
}

// NewLoggingMenuItemService creates a new LoggingMenuItemService.
func NewLoggingMenuItemService(next dining.MenuItemService, logger *slog.Logger) *LoggingMenuItemService {
	return &LoggingMenuItemService{next: next, logger: logger}
}

// UpsertMenuItems logs the batch size and the number saved.
func (s *LoggingMenuItemService) UpsertMenuItems(ctx context.Context, items []*dining.MenuItem) (saved int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("upsert menu items",
			"items", len(items),
			"saved", saved,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertMenuItems(ctx, items)
}

// MenuExistsForDate delegates to the wrapped service.
func (s *LoggingMenuItemService) MenuExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	return s.next.MenuExistsForDate(ctx, date)
}

// DeleteMenuItemsOlderThan logs the retention window and rows removed.
func (s *LoggingMenuItemService) DeleteMenuItemsOlderThan(ctx context.Context, days int) (deleted int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete old menu items",
			"days", days,
			"deleted", deleted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteMenuItemsOlderThan(ctx, days)
}

// FindMenuItems delegates to the wrapped service.
func (s *LoggingMenuItemService) FindMenuItems(ctx context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error) {
	return s.next.FindMenuItems(ctx, filter)
}
