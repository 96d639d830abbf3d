package dining

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxNameLength bounds the length of a menu item name in bytes.
const MaxNameLength = 200

// DateLayout is the calendar date format used in menu URLs and storage.
const DateLayout = "2006-01-02"

// MealType is a meal served by a dining hall.
type MealType string

// Meal types in serving order.
const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes returns all meal types in serving order.
func MealTypes() []MealType {
	return []MealType{Breakfast, Lunch, Dinner}
}

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner:
		return true
	}
	return false
}

// ParseMealType validates a user-supplied meal type.
func ParseMealType(s string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", Errorf(EINVALID, "unknown meal type %q", s)
	}
	return m, nil
}

// Date truncates t to its calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, Errorf(EINVALID, "invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// Nutrition holds per-serving nutrition values. Nil fields are unknown.
type Nutrition struct {
	Calories *int `json:"calories,omitempty"`
	Protein  *int `json:"protein,omitempty"`
	Carbs    *int `json:"carbs,omitempty"`
	Fat      *int `json:"fat,omitempty"`
}

// Merge fills fields that are unknown in n from other.
func (n Nutrition) Merge(other Nutrition) Nutrition {
	if n.Calories == nil {
		n.Calories = other.Calories
	}
	if n.Protein == nil {
		n.Protein = other.Protein
	}
	if n.Carbs == nil {
		n.Carbs = other.Carbs
	}
	if n.Fat == nil {
		n.Fat = other.Fat
	}
	return n
}

// MenuItem is a single dish served at a dining hall for one meal on one date.
type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	HallID      HallID    `json:"diningHallId"`
	MealType    MealType  `json:"mealType"`
	MenuDate    time.Time `json:"menuDate"`
	Category    string    `json:"category"`
	Nutrition   Nutrition `json:"nutrition"`
	Tags        []string  `json:"tags"`
	ContentHash string    `json:"contentHash"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// MenuItemKey is the natural identity of a menu item.
type MenuItemKey struct {
	HallID   HallID
	Name     string
	MealType MealType
	MenuDate string
}

// Key returns the identity used for de-duplication and upserts.
func (i *MenuItem) Key() MenuItemKey {
	return MenuItemKey{
		HallID:   i.HallID,
		Name:     i.Name,
		MealType: i.MealType,
		MenuDate: FormatDate(i.MenuDate),
	}
}

// Fingerprint returns the item's updatable content in a canonical form.
// Identity fields and ScrapedAt are excluded, so an unchanged item
// re-scraped on another run has the same fingerprint.
func (i *MenuItem) Fingerprint() string {
	var b strings.Builder
	b.WriteString(i.Description)
	b.WriteByte(0)
	b.WriteString(i.Category)
	for _, v := range []*int{i.Nutrition.Calories, i.Nutrition.Protein, i.Nutrition.Carbs, i.Nutrition.Fat} {
		b.WriteByte(0)
		if v != nil {
			b.WriteString(strconv.Itoa(*v))
		}
	}
	b.WriteByte(0)
	b.WriteString(strings.Join(NormalizeTags(i.Tags), ","))
	return b.String()
}

// Validate returns an error if the menu item contains invalid fields.
func (i *MenuItem) Validate() error {
	if i.Name == "" {
		return Errorf(EINVALID, "menu item name required")
	}
	if len(i.Name) > MaxNameLength {
		return Errorf(EINVALID, "menu item name longer than %d bytes", MaxNameLength)
	}
	if _, ok := FindHall(i.HallID); !ok {
		return Errorf(EINVALID, "unknown dining hall %q", i.HallID)
	}
	if !i.MealType.Valid() {
		return Errorf(EINVALID, "unknown meal type %q", i.MealType)
	}
	if i.MenuDate.IsZero() {
		return Errorf(EINVALID, "menu item date required")
	}
	for _, v := range []*int{i.Nutrition.Calories, i.Nutrition.Protein, i.Nutrition.Carbs, i.Nutrition.Fat} {
		if v != nil && *v < 0 {
			return Errorf(EINVALID, "menu item nutrition values must be non-negative")
		}
	}
	return nil
}

// NormalizeTags lowercases, trims, de-duplicates and sorts tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MenuItemService represents a service for persisting menu items.
type MenuItemService interface {
	// UpsertMenuItems inserts or updates items keyed by hall, name, meal
	// and date. Identity fields are never rewritten. A failing item does not
	// stop later items; the returned count is the number of items stored and
	// the error joins every per-item failure. Implementations set ID,
	// ContentHash and normalised Tags on each stored item, and fill a zero
	// ScrapedAt.
	UpsertMenuItems(ctx context.Context, items []*MenuItem) (int, error)

	// MenuExistsForDate reports whether any items are stored for the date.
	MenuExistsForDate(ctx context.Context, date time.Time) (bool, error)

	// DeleteMenuItemsOlderThan removes items dated more than days before
	// today and returns the number removed.
	DeleteMenuItemsOlderThan(ctx context.Context, days int) (int, error)

	// FindMenuItems retrieves items matching the filter.
	FindMenuItems(ctx context.Context, filter MenuItemFilter) ([]*MenuItem, error)
}

// MenuItemFilter represents a filter for FindMenuItems.
type MenuItemFilter struct {
	HallID   *HallID    `json:"diningHallId"`
	MealType *MealType  `json:"mealType"`
	MenuDate *time.Time `json:"menuDate"`
	Category *string    `json:"category"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
