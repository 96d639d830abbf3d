package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/umass-dining/dining"
)

// Compile-time interface verification.
var _ dining.MenuItemService = (*MenuItemService)(nil)

// MenuItemService implements dining.MenuItemService using SQLite.
type MenuItemService struct {
	db *DB
}

// NewMenuItemService creates a new MenuItemService.
func NewMenuItemService(db *DB) *MenuItemService {
	return &MenuItemService{db: db}
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

const upsertMenuItemSQL = `
	INSERT INTO menu_items (
		id, name, description, dining_hall_id, meal_type, menu_date, category,
		calories, protein, carbs, fat, tags, content_hash, scraped_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
	WHERE menu_items.content_hash != excluded.content_hash
`

// UpsertMenuItems inserts or updates items in a single transaction. Rows
// whose content hash is unchanged are left untouched. Invalid items are
// skipped and reported in the joined error.
//
// Each stored item is updated in place: ID, ContentHash and normalised Tags
// are set, and ScrapedAt is filled when zero.
func (s *MenuItemService) UpsertMenuItems(ctx context.Context, items []*dining.MenuItem) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var saved int
	var errs []error
	for _, item := range items {
		if err := s.upsertMenuItem(ctx, tx, item); err != nil {
			errs = append(errs, fmt.Errorf("%s %s %q: %w", item.HallID, item.MealType, item.Name, err))
			continue
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit menu items: %w", err)
	}
	return saved, errors.Join(errs...)
}

func (s *MenuItemService) upsertMenuItem(ctx context.Context, tx *sql.Tx, item *dining.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	item.Tags = dining.NormalizeTags(item.Tags)
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return err
	}
	if item.ScrapedAt.IsZero() {
		item.ScrapedAt = s.db.Now().UTC()
	}
	item.ContentHash = hashContent(item.Fingerprint())

	key := item.Key()
	n := item.Nutrition
	if _, err := tx.ExecContext(ctx, upsertMenuItemSQL,
		uuid.New().String(), key.Name, item.Description, string(key.HallID), string(key.MealType), key.MenuDate, item.Category,
		nullInt(n.Calories), nullInt(n.Protein), nullInt(n.Carbs), nullInt(n.Fat),
		string(tags), item.ContentHash, item.ScrapedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	return tx.QueryRowContext(ctx, `
		SELECT id FROM menu_items
		WHERE dining_hall_id = ? AND name = ? AND meal_type = ? AND menu_date = ?
	`, string(key.HallID), key.Name, string(key.MealType), key.MenuDate).Scan(&item.ID)
}

// MenuExistsForDate reports whether any items are stored for the date.
func (s *MenuItemService) MenuExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM menu_items WHERE menu_date = ?)
	`, dining.FormatDate(date)).Scan(&exists)
	return exists, err
}

// DeleteMenuItemsOlderThan removes items dated before today minus days.
func (s *MenuItemService) DeleteMenuItemsOlderThan(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, dining.Errorf(dining.EINVALID, "retention days must be non-negative")
	}
	cutoff := dining.Date(s.db.Now()).AddDate(0, 0, -days)

	result, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE menu_date < ?`, dining.FormatDate(cutoff))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FindMenuItems retrieves items matching the filter, ordered by date, hall,
// meal in serving order, category and name.
func (s *MenuItemService) FindMenuItems(ctx context.Context, filter dining.MenuItemFilter) ([]*dining.MenuItem, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, name, description, dining_hall_id, meal_type, menu_date, category,
			calories, protein, carbs, fat, tags, content_hash, scraped_at
		FROM menu_items
		WHERE 1 = 1`)

	if filter.HallID != nil {
		query.WriteString(" AND dining_hall_id = ?")
		args = append(args, string(*filter.HallID))
	}
	if filter.MealType != nil {
		query.WriteString(" AND meal_type = ?")
		args = append(args, string(*filter.MealType))
	}
	if filter.MenuDate != nil {
		query.WriteString(" AND menu_date = ?")
		args = append(args, dining.FormatDate(*filter.MenuDate))
	}
	if filter.Category != nil {
		query.WriteString(" AND category = ?")
		args = append(args, *filter.Category)
	}

	query.WriteString(`
		ORDER BY menu_date, dining_hall_id,
			CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END,
			category, name`)
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
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

func scanMenuItem(rows *sql.Rows) (*dining.MenuItem, error) {
	var item dining.MenuItem
	var menuDate, tags, scrapedAt string
	var calories, protein, carbs, fat sql.NullInt64

	if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.HallID, &item.MealType,
		&menuDate, &item.Category, &calories, &protein, &carbs, &fat,
		&tags, &item.ContentHash, &scrapedAt); err != nil {
		return nil, err
	}

	date, err := dining.ParseDate(menuDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu_date: %w", err)
	}
	item.MenuDate = date

	if item.ScrapedAt, err = parseRFC3339(scrapedAt, "scraped_at"); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags: %w", err)
	}

	item.Nutrition = dining.Nutrition{
		Calories: intOrNil(calories),
		Protein:  intOrNil(protein),
		Carbs:    intOrNil(carbs),
		Fat:      intOrNil(fat),
	}
	return &item, nil
}
