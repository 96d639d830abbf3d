package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umass-dining/dining"
	"github.com/umass-dining/dining/postgres"
)

var menuDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// setupTestDB connects to DINING_POSTGRES_URL and empties the menu table.
// Tests sharing the table run sequentially.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	url := os.Getenv("DINING_POSTGRES_URL")
	if url == "" {
		t.Skip("DINING_POSTGRES_URL not set")
	}

	ctx := context.Background()
	db := postgres.NewDB(url)
	require.NoError(t, db.Open(ctx))
	t.Cleanup(func() { db.Close() })

	db.Now = func() time.Time { return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err := postgres.NewMenuItemService(db).DeleteMenuItemsOlderThan(ctx, 0)
	require.NoError(t, err)
	db.Now = time.Now
	return db
}

func newItem(hall dining.HallID, meal dining.MealType, name string) *dining.MenuItem {
	return &dining.MenuItem{
		Name:      name,
		HallID:    hall,
		MealType:  meal,
		MenuDate:  menuDate,
		Category:  dining.CategoryGeneral,
		Tags:      []string{"gluten-free"},
		ScrapedAt: time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC),
	}
}

func TestMenuItemService(t *testing.T) {
	db := setupTestDB(t)
	svc := postgres.NewMenuItemService(db)
	ctx := context.Background()

	calories := 350
	chicken := newItem(dining.Worcester, dining.Lunch, "Grilled Chicken")
	chicken.Nutrition.Calories = &calories

	t.Run("inserts items", func(t *testing.T) {
		n, err := svc.UpsertMenuItems(ctx, []*dining.MenuItem{
			chicken,
			newItem(dining.Worcester, dining.Breakfast, "Oatmeal"),
			newItem(dining.Franklin, dining.Dinner, "Beef Stew"),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.NotEmpty(t, chicken.ID)

		found, err := svc.FindMenuItems(ctx, dining.MenuItemFilter{})
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "Beef Stew", found[0].Name)
		assert.Equal(t, "Oatmeal", found[1].Name)
		assert.Equal(t, chicken, found[2])
	})

	t.Run("updates an existing item instead of duplicating it", func(t *testing.T) {
		updated := newItem(dining.Worcester, dining.Lunch, "Grilled Chicken")
		updated.Tags = []string{"contains-dairy"}

		n, err := svc.UpsertMenuItems(ctx, []*dining.MenuItem{updated})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, chicken.ID, updated.ID)

		hall, meal := dining.Worcester, dining.Lunch
		found, err := svc.FindMenuItems(ctx, dining.MenuItemFilter{HallID: &hall, MealType: &meal})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, []string{"contains-dairy"}, found[0].Tags)
		assert.Nil(t, found[0].Nutrition.Calories)
	})

	t.Run("reports invalid items without stopping", func(t *testing.T) {
		n, err := svc.UpsertMenuItems(ctx, []*dining.MenuItem{
			newItem("hogwarts", dining.Lunch, "Butterbeer"),
			newItem(dining.Berkshire, dining.Lunch, "Rice Bowl"),
		})
		require.Error(t, err)
		assert.Equal(t, dining.EINVALID, dining.ErrorCode(err))
		assert.Equal(t, 1, n)
	})

	t.Run("checks whether a date is stored", func(t *testing.T) {
		exists, err := svc.MenuExistsForDate(ctx, menuDate)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = svc.MenuExistsForDate(ctx, menuDate.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("paginates", func(t *testing.T) {
		found, err := svc.FindMenuItems(ctx, dining.MenuItemFilter{Offset: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, found, 2)
	})

	t.Run("deletes items before the retention window", func(t *testing.T) {
		db.Now = func() time.Time { return menuDate.AddDate(0, 0, 8) }
		defer func() { db.Now = time.Now }()

		n, err := svc.DeleteMenuItemsOlderThan(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		exists, err := svc.MenuExistsForDate(ctx, menuDate)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
