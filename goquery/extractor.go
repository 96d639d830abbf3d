// Package goquery provides an HTML menu extractor built on goquery.
package goquery

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/umass-dining/dining"
	"golang.org/x/net/html"
)

// Ensure Extractor implements dining.MenuExtractor at compile time.
var _ dining.MenuExtractor = (*Extractor)(nil)

// Selector chains, tried in order. The first selector that matches wins.
var (
	stationSelectors     = []string{".menu-station", "div.station"}
	stationNameSelectors = []string{"h3, h4, h5", ".station-name", ".category-name"}
	itemSelectors        = []string{".menu-item", "li", ".food-item"}
	nameSelectors        = []string{".item-name", "a, span, strong"}
	descriptionSelectors = []string{".item-description", ".description"}
	tagSelectors         = []string{".dietary-icon", ".allergen", "img[alt]"}
)

// Extractor extracts menu items from dining hall pages.
//
// Page markup is not stable, so every lookup falls back to a safe default
// rather than failing: the whole document when no meal section is found, a
// flat item list when there are no stations, and "General" when a station
// has no name.
type Extractor struct {
	itemFilter func(name string) bool
	now        func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithItemFilter drops items whose cleaned name does not satisfy fn.
// Use dining.IsLikelyFoodItem to skip navigation text on flat pages.
func WithItemFilter(fn func(name string) bool) Option {
	return func(e *Extractor) {
		e.itemFilter = fn
	}
}

// WithClock sets the clock used for MenuItem.ScrapedAt. Without a clock
// ScrapedAt is left zero for storage to fill, and extraction of the same
// page always yields equal items.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractMenu parses the page and returns its menu items.
func (e *Extractor) ExtractMenu(page *dining.MenuPage) (*dining.ExtractResult, error) {
	if page == nil {
		return nil, dining.Errorf(dining.EINVALID, "menu page required")
	}
	if _, ok := dining.FindHall(page.HallID); !ok {
		return nil, dining.Errorf(dining.EINVALID, "unknown dining hall %q", page.HallID)
	}
	if !page.MealType.Valid() {
		return nil, dining.Errorf(dining.EINVALID, "unknown meal type %q", page.MealType)
	}

	root, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		return nil, dining.Errorf(dining.EINVALID, "failed to parse HTML: %v", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	section, strategy := locateSection(doc, page.MealType)
	result := &dining.ExtractResult{
		Section:  strategy,
		Degraded: strategy == SectionDocument,
	}

	var scrapedAt time.Time
	if e.now != nil {
		scrapedAt = e.now().UTC()
	}

	p := &pageParser{
		page:       page,
		date:       dining.Date(page.MenuDate),
		scrapedAt:  scrapedAt,
		itemFilter: e.itemFilter,
	}

	if stations := findFirst(section, stationSelectors...); stations != nil {
		result.Stations = stations.Length()
		stations.Each(func(_ int, station *goquery.Selection) {
			result.Items = append(result.Items, p.parseStation(station, stationCategory(station))...)
		})
	}

	// Flat menu: no stations, or stations without recognisable items.
	if len(result.Items) == 0 {
		result.Items = p.parseStation(section, dining.CategoryGeneral)
	}

	return result, nil
}

// pageParser holds the per-page values shared by every item.
type pageParser struct {
	page       *dining.MenuPage
	date       time.Time
	scrapedAt  time.Time
	itemFilter func(string) bool
}

func (p *pageParser) parseStation(station *goquery.Selection, category string) []*dining.MenuItem {
	elements := findFirst(station, itemSelectors...)
	if elements == nil {
		return nil
	}

	var items []*dining.MenuItem
	elements.Each(func(_ int, el *goquery.Selection) {
		if item := p.parseItem(el, category); item != nil {
			items = append(items, item)
		}
	})
	return items
}

// parseItem returns nil for elements without a usable name.
func (p *pageParser) parseItem(el *goquery.Selection, category string) *dining.MenuItem {
	name := itemName(el)
	if utf8.RuneCountInString(name) < 2 || len(name) > dining.MaxNameLength {
		return nil
	}
	if p.itemFilter != nil && !p.itemFilter(name) {
		return nil
	}

	var description string
	if d := findFirst(el, descriptionSelectors...); d != nil {
		description = collapse(d.First().Text())
	}

	return &dining.MenuItem{
		Name:        name,
		Description: description,
		HallID:      p.page.HallID,
		MealType:    p.page.MealType,
		MenuDate:    p.date,
		Category:    category,
		Nutrition:   itemNutrition(el),
		Tags:        itemTags(el, name, description),
		ScrapedAt:   p.scrapedAt,
	}
}

func stationCategory(station *goquery.Selection) string {
	if h := findFirst(station, stationNameSelectors...); h != nil {
		if name := collapse(h.First().Text()); name != "" {
			return name
		}
	}
	return dining.CategoryGeneral
}

func itemName(el *goquery.Selection) string {
	if n := findFirst(el, nameSelectors...); n != nil {
		return dining.CleanItemName(n.First().Text())
	}
	return dining.CleanItemName(el.Text())
}

// itemNutrition reads per-field sub-elements or data attributes, then fills
// any remaining gaps from the free text of a .nutrition panel.
func itemNutrition(el *goquery.Selection) dining.Nutrition {
	n := dining.Nutrition{
		Calories: nutritionValue(el, ".calories", "data-calories"),
		Protein:  nutritionValue(el, ".protein", "data-protein"),
		Carbs:    nutritionValue(el, ".carbs, .carbohydrates", "data-carbs"),
		Fat:      nutritionValue(el, ".fat", "data-fat"),
	}
	if panel := el.Find(".nutrition").First(); panel.Length() > 0 {
		n = n.Merge(dining.ParseNutrition(panel.Text()))
	}
	return n
}

func nutritionValue(el *goquery.Selection, selector, attr string) *int {
	if s := el.Find(selector).First(); s.Length() > 0 {
		if v := dining.ParseFirstInt(s.Text()); v != nil {
			return v
		}
	}
	if v, ok := el.Attr(attr); ok {
		return dining.ParseFirstInt(v)
	}
	if s := el.Find("[" + attr + "]").First(); s.Length() > 0 {
		v, _ := s.Attr(attr)
		return dining.ParseFirstInt(v)
	}
	return nil
}

// itemTags unions explicit icon/allergen hints with inferred dietary and
// allergen tags.
func itemTags(el *goquery.Selection, name, description string) []string {
	var tags []string
	if icons := findFirst(el, tagSelectors...); icons != nil {
		icons.Each(func(_ int, icon *goquery.Selection) {
			if text := iconText(icon); text != "" {
				tags = append(tags, text)
			}
		})
	}
	tags = append(tags, dining.InferDietaryTags(name, description)...)
	tags = append(tags, dining.AllergenTags(dining.DetectAllergens(name, description))...)
	return dining.NormalizeTags(tags)
}

func iconText(icon *goquery.Selection) string {
	for _, attr := range []string{"alt", "title"} {
		if v, ok := icon.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.ToLower(collapse(v))
		}
	}
	return strings.ToLower(collapse(icon.Text()))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
