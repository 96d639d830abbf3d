package mock

import (
	"context"
	"time"

	"github.com/umass-dining/dining"
)

var _ dining.MenuItemService = (*MenuItemService)(nil)

// MenuItemService is a mock implementation of dining.MenuItemService.
type MenuItemService struct {
	UpsertMenuItemsFn          func(ctx context.Context, items []*dining.MenuItem) (int, error)
	MenuExistsForDateFn        func(ctx context.Context, date time.Time) (bool, error)
	DeleteMenuItemsOlderThanFn func(ctx context.Context, days int) (int, error)
	FindMenuItemsFn            func(ctx context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error)
}

func (s *MenuItemService) UpsertMenuItems(ctx context.Context, items []*dining.MenuItem) (int, error) {
	return s.UpsertMenuItemsFn(ctx, items)
}

func (s *MenuItemService) MenuExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	return s.MenuExistsForDateFn(ctx, date)
}

func (s *MenuItemService) DeleteMenuItemsOlderThan(ctx context.Context, days int) (int, error) {
	return s.DeleteMenuItemsOlderThanFn(ctx, days)
}

func (s *MenuItemService) FindMenuItems(ctx context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error) {
	return s.FindMenuItemsFn(ctx, filter)
}
