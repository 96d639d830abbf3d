package dining

import "time"

// MenuPage is a fetched menu page for one hall, meal and date.
type MenuPage struct {
	HTML     string
	HallID   HallID
	MealType MealType
	MenuDate time.Time
}

// ExtractResult holds the items extracted from a menu page.
type ExtractResult struct {
	Items []*MenuItem

	// Section names the strategy that located the meal section
	// (e.g., "id", "heading", "document").
	Section string

	// Degraded is true when no meal section was found and the whole
	// document was searched instead.
	Degraded bool

	// Stations is the number of station groupings found.
	// Zero means the section was parsed as a flat list.
	Stations int
}

// MenuExtractor extracts structured menu items from menu page HTML.
type MenuExtractor interface {
	// ExtractMenu parses the page and returns one item per recognised item
	// element. Missing markup degrades to fallbacks instead of failing;
	// an error is returned only when the page itself is unusable.
	ExtractMenu(page *MenuPage) (*ExtractResult, error)
}
