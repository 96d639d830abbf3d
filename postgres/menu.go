package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/umass-dining/dining"
)

// Compile-time interface verification.
var _ dining.MenuItemService = (*MenuItemService)(nil)

// MenuItemService implements dining.MenuItemService using PostgreSQL.
type MenuItemService struct {
	db *DB
}

// NewMenuItemService creates a new MenuItemService.
func NewMenuItemService(db *DB) *MenuItemService {
	return &MenuItemService{db: db}
}

func hashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

const upsertMenuItemSQL = `
	INSERT INTO menu_items (
		id, name, description, dining_hall_id, meal_type, menu_date, category,
		calories, protein, carbs, fat, tags, content_hash, scraped_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (dining_hall_id, name, meal_type, menu_date) DO UPDATE SET
		description = excluded.description,
		category = excluded.category,
		calories = excluded.calories,
		protein = excluded.protein,
		carbs = excluded.carbs,
		fat = excluded.fat,
		tags = excluded.tags,
		content_hash = excluded.content_hash,
		scraped_at = excluded.scraped_at
	WHERE menu_items.content_hash IS DISTINCT FROM excluded.content_hash
`

// UpsertMenuItems inserts or updates each item in its own statement, so a
// failing item does not abort the others. Rows whose content hash is
// unchanged are left untouched.
//
// Each stored item is updated in place: ID, ContentHash and normalised Tags
// are set, and ScrapedAt is filled when zero.
func (s *MenuItemService) UpsertMenuItems(ctx context.Context, items []*dining.MenuItem) (int, error) {
	var saved int
	var errs []error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return saved, errors.Join(append(errs, err)...)
		}
		if err := s.upsertMenuItem(ctx, item); err != nil {
			errs = append(errs, fmt.Errorf("%s %s %q: %w", item.HallID, item.MealType, item.Name, err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

func (s *MenuItemService) upsertMenuItem(ctx context.Context, item *dining.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	item.Tags = dining.NormalizeTags(item.Tags)
	item.MenuDate = dining.Date(item.MenuDate)
	if item.ScrapedAt.IsZero() {
		item.ScrapedAt = s.db.Now().UTC()
	}
	item.ContentHash = hashContent(item.Fingerprint())

	n := item.Nutrition
	if _, err := s.db.pool.Exec(ctx, upsertMenuItemSQL,
		uuid.New().String(), item.Name, item.Description, string(item.HallID), string(item.MealType),
		item.MenuDate, item.Category, n.Calories, n.Protein, n.Carbs, n.Fat,
		item.Tags, item.ContentHash, item.ScrapedAt,
	); err != nil {
		return err
	}

	return s.db.pool.QueryRow(ctx, `
		SELECT id FROM menu_items
		WHERE dining_hall_id = $1 AND name = $2 AND meal_type = $3 AND menu_date = $4
	`, string(item.HallID), item.Name, string(item.MealType), item.MenuDate).Scan(&item.ID)
}

// MenuExistsForDate reports whether any items are stored for the date.
func (s *MenuItemService) MenuExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := s.db.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM menu_items WHERE menu_date = $1)
	`, dining.Date(date)).Scan(&exists)
	return exists, err
}

// DeleteMenuItemsOlderThan removes items dated before today minus days.
func (s *MenuItemService) DeleteMenuItemsOlderThan(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, dining.Errorf(dining.EINVALID, "retention days must be non-negative")
	}
	cutoff := dining.Date(s.db.Now()).AddDate(0, 0, -days)

	tag, err := s.db.pool.Exec(ctx, `DELETE FROM menu_items WHERE menu_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// FindMenuItems retrieves items matching the filter, ordered by date, hall,
// meal in serving order, category and name.
func (s *MenuItemService) FindMenuItems(ctx context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error) {
	var query strings.Builder
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	query.WriteString(`
		SELECT id, name, description, dining_hall_id, meal_type, menu_date, category,
			calories, protein, carbs, fat, tags, content_hash, scraped_at
		FROM menu_items
		WHERE TRUE`)

	if filter.HallID != nil {
		query.WriteString(" AND dining_hall_id = " + arg(string(*filter.HallID)))
	}
	if filter.MealType != nil {
		query.WriteString(" AND meal_type = " + arg(string(*filter.MealType)))
	}
	if filter.MenuDate != nil {
		query.WriteString(" AND menu_date = " + arg(dining.Date(*filter.MenuDate)))
	}
	if filter.Category != nil {
		query.WriteString(" AND category = " + arg(*filter.Category))
	}

	query.WriteString(`
		ORDER BY menu_date, dining_hall_id,
			CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END,
			category, name`)
	if filter.Limit > 0 {
		query.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET " + arg(filter.Offset))
	}

	rows, err := s.db.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*dining.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanMenuItem(rows pgx.Rows) (*dining.MenuItem, error) {
	var item dining.MenuItem
	var hallID, mealType string

	if err := rows.Scan(&item.ID, &item.Name, &item.Description, &hallID, &mealType,
		&item.MenuDate, &item.Category,
		&item.Nutrition.Calories, &item.Nutrition.Protein, &item.Nutrition.Carbs, &item.Nutrition.Fat,
		&item.Tags, &item.ContentHash, &item.ScrapedAt); err != nil {
		return nil, err
	}

	item.HallID = dining.HallID(hallID)
	item.MealType = dining.MealType(mealType)
	item.MenuDate = dining.Date(item.MenuDate)
	item.ScrapedAt = item.ScrapedAt.UTC()
	return &item, nil
}
