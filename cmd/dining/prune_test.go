package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umass-dining/dining"
	main "github.com/umass-dining/dining/cmd/dining"
	"github.com/umass-dining/dining/mock"
	"github.com/umass-dining/dining/scrape"
)

func TestPruneCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("deletes menus older than the retention window", func(t *testing.T) {
		t.Parallel()

		var gotDays int
		menus := &mock.MenuItemService{
			DeleteMenuItemsOlderThanFn: func(_ context.Context, days int) (int, error) {
				gotDays = days
				return 42, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Menus:   menus,
			Scraper: &scrape.Scraper{Menus: menus},
		}

		err := (&main.PruneCmd{Days: 14}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 14, gotDays)
		assert.Contains(t, stdout.String(), "Deleted 42 menu items older than 14 days")
	})

	t.Run("rejects negative days", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  stderr,
			Scraper: &scrape.Scraper{Menus: &mock.MenuItemService{}},
		}

		err := (&main.PruneCmd{Days: -3}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, dining.EINVALID, dining.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("returns error when delete fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("disk I/O error")
		menus := &mock.MenuItemService{
			DeleteMenuItemsOlderThanFn: func(_ context.Context, _ int) (int, error) {
				return 0, dbErr
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  stderr,
			Scraper: &scrape.Scraper{Menus: menus},
		}

		err := (&main.PruneCmd{Days: 7}).Run(deps)

		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, stderr.String(), "error:")
	})
}
