package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/umass-dining/dining"
)

// Section strategy names reported in dining.ExtractResult.Section.
const (
	SectionByID        = "id"
	SectionByMenuClass = "meal-menu-class"
	SectionByDataMeal  = "data-meal"
	SectionByMealClass = "meal-class"
	SectionByHeading   = "heading"
	SectionDocument    = "document"
)

// sectionLocator finds the container for a meal within a document.
// locate returns nil when the strategy does not apply.
type sectionLocator struct {
	name   string
	locate func(doc *goquery.Document, meal dining.MealType) *goquery.Selection
}

// sectionLocators are tried in order until one matches.
var sectionLocators = []sectionLocator{
	{SectionByID, bySelector(func(m string) string { return "#" + m })},
	{SectionByMenuClass, bySelector(func(m string) string { return "." + m + "-menu" })},
	{SectionByDataMeal, bySelector(func(m string) string { return `[data-meal="` + m + `"]` })},
	{SectionByMealClass, bySelector(func(m string) string { return ".meal-" + m })},
	{SectionByHeading, byHeading},
}

func bySelector(selector func(meal string) string) func(*goquery.Document, dining.MealType) *goquery.Selection {
	return func(doc *goquery.Document, meal dining.MealType) *goquery.Selection {
		if sel := doc.Find(selector(string(meal))).First(); sel.Length() > 0 {
			return sel
		}
		return nil
	}
}

// byHeading finds the first h2-h4 mentioning the meal and returns its
// nearest div ancestor, or its nearest section ancestor.
func byHeading(doc *goquery.Document, meal dining.MealType) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), string(meal)) {
			return true
		}
		for _, container := range []string{"div", "section"} {
			if c := h.Parent().Closest(container); c.Length() > 0 {
				found = c
				return false
			}
		}
		return true
	})
	return found
}

// locateSection returns the meal section and the name of the strategy that
// found it. The whole document is returned when every strategy misses.
func locateSection(doc *goquery.Document, meal dining.MealType) (*goquery.Selection, string) {
	for _, l := range sectionLocators {
		if sel := l.locate(doc, meal); sel != nil {
			return sel, l.name
		}
	}
	return doc.Selection, SectionDocument
}

// findFirst returns the matches for the first selector in the chain that
// matches anything within s, or nil.
func findFirst(s *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if m := s.Find(selector); m.Length() > 0 {
			return m
		}
	}
	return nil
}
