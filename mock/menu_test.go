package mock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umass-dining/dining"
	"github.com/umass-dining/dining/mock"
)

func TestMenuItemService_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ dining.MenuItemService = &mock.MenuItemService{}
}

func TestMenuItemService_UpsertMenuItems(t *testing.T) {
	t.Parallel()

	t.Run("delegates to UpsertMenuItemsFn", func(t *testing.T) {
		t.Parallel()

		var calledWith []*dining.MenuItem
		s := &mock.MenuItemService{
			UpsertMenuItemsFn: func(_ context.Context, items []*dining.MenuItem) (int, error) {
				calledWith = items
				return len(items), nil
			},
		}

		items := []*dining.MenuItem{{Name: "Grilled Chicken"}}
		n, err := s.UpsertMenuItems(context.Background(), items)

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, items, calledWith)
	})

	t.Run("returns error from UpsertMenuItemsFn", func(t *testing.T) {
		t.Parallel()

		s := &mock.MenuItemService{
			UpsertMenuItemsFn: func(_ context.Context, _ []*dining.MenuItem) (int, error) {
				return 0, dining.Errorf(dining.EINTERNAL, "database unavailable")
			},
		}

		_, err := s.UpsertMenuItems(context.Background(), nil)

		assert.Equal(t, dining.EINTERNAL, dining.ErrorCode(err))
	})
}

func TestMenuItemService_MenuExistsForDate(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	var calledWith time.Time
	s := &mock.MenuItemService{
		MenuExistsForDateFn: func(_ context.Context, d time.Time) (bool, error) {
			calledWith = d
			return true, nil
		},
	}

	ok, err := s.MenuExistsForDate(context.Background(), date)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, date, calledWith)
}
