package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/umass-dining/dining"
	"github.com/umass-dining/dining/scrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Menus   dining.MenuItemService
	Scraper *scrape.Scraper

	// Now returns the current time. Used to resolve "today".
	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	BaseURL     string        `name:"base-url" env:"DINING_BASE_URL" default:"https://umassdining.com/locations-menus" help:"Menu site root URL"`
	DB          string        `name:"db" env:"DINING_DB" help:"SQLite database path"`
	DatabaseURL string        `name:"database-url" env:"DATABASE_URL" help:"PostgreSQL connection URL (takes precedence over --db)"`
	Timeout     time.Duration `default:"30s" help:"Page fetch timeout"`
	Header      []string      `short:"H" sep:"none" help:"Extra request header as 'Key: Value' (repeatable)"`
	MaxRetries  int           `name:"max-retries" default:"3" help:"Fetch attempts per page"`
	RetryDelay  time.Duration `name:"retry-delay" default:"5s" help:"Pause between fetch attempts"`
	Politeness  time.Duration `default:"1s" help:"Minimum pause between page fetches"`
	Browser     bool          `help:"Render pages with headless Chrome"`
	FoodOnly    bool          `name:"food-only" help:"Drop item names that do not look like food"`
	LogLevel    string        `name:"log-level" env:"DINING_LOG_LEVEL" enum:"debug,info,warn,error" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFile     string        `name:"log-file" env:"DINING_LOG_FILE" help:"Also append logs to this file"`

	Scrape   ScrapeCmd   `cmd:"" help:"Scrape menus for one date"`
	Schedule ScheduleCmd `cmd:"" help:"Scrape every day at a fixed time and prune old menus"`
	Prune    PruneCmd    `cmd:"" help:"Delete stored menus older than a number of days"`
	Menu     MenuCmd     `cmd:"" help:"Show stored menu items"`
	Halls    HallsCmd    `cmd:"" help:"List dining halls"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Date  string   `short:"d" help:"Menu date (YYYY-MM-DD), defaults to today"`
	Hall  []string `help:"Only scrape these halls (repeatable)"`
	Meal  []string `help:"Only scrape these meals (repeatable)"`
	Force bool     `short:"f" help:"Scrape even if the date is already stored"`
}

// ScheduleCmd is the "schedule" subcommand.
type ScheduleCmd struct {
	At            string `name:"scrape-time" env:"SCRAPE_SCHEDULE" default:"06:00" help:"Daily scrape time (HH:MM, local time)"`
	RetentionDays int    `name:"retention-days" env:"DINING_RETENTION_DAYS" default:"7" help:"Days of menus to keep"`
}

// PruneCmd is the "prune" subcommand.
type PruneCmd struct {
	Days int `default:"7" help:"Days of menus to keep"`
}

// MenuCmd is the "menu" subcommand.
type MenuCmd struct {
	Date string   `short:"d" help:"Menu date (YYYY-MM-DD), defaults to today"`
	Hall string   `help:"Only show this hall"`
	Meal string   `help:"Only show this meal"`
	Diet []string `help:"Dietary filter: vegetarian, vegan, gluten-free, dairy-free (repeatable)"`
}

// HallsCmd is the "halls" subcommand.
type HallsCmd struct{}
