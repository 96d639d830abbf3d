package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umass-dining/dining"
	main "github.com/umass-dining/dining/cmd/dining"
	"github.com/umass-dining/dining/mock"
)

func intPtr(n int) *int { return &n }

func storedMenu() []*dining.MenuItem {
	date := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	return []*dining.MenuItem{
		{
			Name:      "Grilled Chicken",
			HallID:    dining.Worcester,
			MealType:  dining.Lunch,
			MenuDate:  date,
			Category:  "Grill",
			Nutrition: dining.Nutrition{Calories: intPtr(220)},
			Tags:      []string{dining.TagGlutenFree},
		},
		{
			Name:     "Black Bean Burger",
			HallID:   dining.Worcester,
			MealType: dining.Lunch,
			MenuDate: date,
			Category: "Grill",
			Tags:     []string{dining.TagVegan, dining.TagVegetarian},
		},
		{
			Name:     "Mac and Cheese",
			HallID:   dining.Worcester,
			MealType: dining.Lunch,
			MenuDate: date,
			Category: dining.CategoryEntrees,
			Tags:     []string{dining.TagVegetarian},
		},
	}
}

func TestMenuCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows today's items in a table", func(t *testing.T) {
		t.Parallel()

		var got dining.MenuItemFilter
		menus := &mock.MenuItemService{
			FindMenuItemsFn: func(_ context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error) {
				got = filter
				return storedMenu(), nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Menus:  menus,
			Now:    fixedNow,
		}

		err := (&main.MenuCmd{}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, got.MenuDate)
		assert.Equal(t, "2026-10-16", dining.FormatDate(*got.MenuDate))
		assert.Nil(t, got.HallID)
		assert.Nil(t, got.MealType)

		output := stdout.String()
		assert.Contains(t, output, "Grilled Chicken")
		assert.Contains(t, output, "220")
		assert.Contains(t, output, "Black Bean Burger")
		assert.Contains(t, output, "vegan, vegetarian")
		assert.Contains(t, output, "Mac and Cheese")
	})

	t.Run("passes hall, meal and date to the store", func(t *testing.T) {
		t.Parallel()

		var got dining.MenuItemFilter
		menus := &mock.MenuItemService{
			FindMenuItemsFn: func(_ context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error) {
				got = filter
				return nil, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Menus:  menus,
			Now:    fixedNow,
		}

		err := (&main.MenuCmd{Date: "2026-10-18", Hall: "Hampshire", Meal: "Dinner"}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, got.HallID)
		require.NotNil(t, got.MealType)
		assert.Equal(t, dining.Hampshire, *got.HallID)
		assert.Equal(t, dining.Dinner, *got.MealType)
		assert.Equal(t, "2026-10-18", dining.FormatDate(*got.MenuDate))
	})

	t.Run("applies dietary filters", func(t *testing.T) {
		t.Parallel()

		menus := &mock.MenuItemService{
			FindMenuItemsFn: func(_ context.Context, _ dining.MenuItemFilter) ([]*dining.MenuItem, error) {
				return storedMenu(), nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Menus:  menus,
			Now:    fixedNow,
		}

		err := (&main.MenuCmd{Diet: []string{"vegetarian", "dairy-free"}}).Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Black Bean Burger")
		assert.NotContains(t, output, "Grilled Chicken")
		assert.NotContains(t, output, "Mac and Cheese")
	})

	t.Run("shows helpful message when nothing is stored", func(t *testing.T) {
		t.Parallel()

		menus := &mock.MenuItemService{
			FindMenuItemsFn: func(_ context.Context, _ dining.MenuItemFilter) ([]*dining.MenuItem, error) {
				return []*dining.MenuItem{}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Menus:  menus,
			Now:    fixedNow,
		}

		err := (&main.MenuCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No menu items found for 2026-10-16")
	})

	t.Run("rejects unknown halls", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Menus:  &mock.MenuItemService{},
			Now:    fixedNow,
		}

		err := (&main.MenuCmd{Hall: "southwest"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, dining.EINVALID, dining.ErrorCode(err))
		assert.Contains(t, stderr.String(), "unknown dining hall")
	})

	t.Run("returns error when FindMenuItems fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database connection failed")
		menus := &mock.MenuItemService{
			FindMenuItemsFn: func(_ context.Context, _ dining.MenuItemFilter) ([]*dining.MenuItem, error) {
				return nil, dbErr
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Menus:  menus,
			Now:    fixedNow,
		}

		err := (&main.MenuCmd{}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, dbErr, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
