package main

import (
	"fmt"
	"time"

	"github.com/umass-dining/dining"
	"github.com/umass-dining/dining/scrape"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	date, err := resolveDate(c.Date, deps.Now)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	halls, err := parseHalls(c.Hall)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	meals, err := parseMeals(c.Meal)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	s := *deps.Scraper
	s.Halls = halls
	s.Meals = meals
	s.SkipExisting = !c.Force
	s.Progress = func(event scrape.ProgressEvent) {
		if event.Error != nil {
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s %s: %v\n",
				event.Completed, event.Total, event.HallID, event.MealType, event.Error)
			return
		}
		fmt.Fprintf(deps.Stdout, "  [%d/%d] %s %s: %d items\n",
			event.Completed, event.Total, event.HallID, event.MealType, event.Items)
	}

	fmt.Fprintf(deps.Stdout, "Scraping menus for %s\n", dining.FormatDate(date))

	result, err := s.Run(deps.Ctx, date)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	if result.Skipped {
		fmt.Fprintf(deps.Stdout, "Menu for %s already stored. Use --force to scrape again.\n", dining.FormatDate(date))
		return nil
	}

	fmt.Fprintf(deps.Stdout, "  Scraped %d pages (%d failed): %d items extracted, %d saved\n",
		result.Pages, result.Failed, result.Extracted, result.Saved)
	return nil
}

// resolveDate parses a YYYY-MM-DD date, defaulting to today.
func resolveDate(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		if now == nil {
			now = time.Now
		}
		return dining.Date(now()), nil
	}
	return dining.ParseDate(s)
}

func parseHalls(ids []string) ([]dining.Hall, error) {
	var halls []dining.Hall
	for _, s := range ids {
		id, err := dining.ParseHallID(s)
		if err != nil {
			return nil, err
		}
		hall, _ := dining.FindHall(id)
		halls = append(halls, hall)
	}
	return halls, nil
}

func parseMeals(values []string) ([]dining.MealType, error) {
	var meals []dining.MealType
	for _, s := range values {
		meal, err := dining.ParseMealType(s)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return meals, nil
}
