package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/umass-dining/dining"
)

// Run executes the menu command.
func (c *MenuCmd) Run(deps *Dependencies) error {
	date, err := resolveDate(c.Date, deps.Now)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	filter := dining.MenuItemFilter{MenuDate: &date}
	if c.Hall != "" {
		id, err := dining.ParseHallID(c.Hall)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
			return err
		}
		filter.HallID = &id
	}
	if c.Meal != "" {
		meal, err := dining.ParseMealType(c.Meal)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
			return err
		}
		filter.MealType = &meal
	}

	items, err := deps.Menus.FindMenuItems(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	var rows []table.Row
	for _, item := range items {
		if !dining.MatchesDietFilters(item, c.Diet) {
			continue
		}
		rows = append(rows, table.Row{
			item.HallID,
			item.MealType,
			item.Category,
			item.Name,
			formatCalories(item.Nutrition.Calories),
			strings.Join(item.Tags, ", "),
		})
	}

	if len(rows) == 0 {
		fmt.Fprintf(deps.Stdout, "No menu items found for %s. Use 'dining scrape' to fetch menus.\n", dining.FormatDate(date))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.AppendHeader(table.Row{"Hall", "Meal", "Category", "Item", "Calories", "Tags"})
	t.AppendRows(rows)
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d items", len(rows))})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func formatCalories(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
