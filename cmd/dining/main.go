package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/umass-dining/dining"
	"github.com/umass-dining/dining/goquery"
	dininghttp "github.com/umass-dining/dining/http"
	"github.com/umass-dining/dining/postgres"
	"github.com/umass-dining/dining/rod"
	"github.com/umass-dining/dining/scrape"
	diningslog "github.com/umass-dining/dining/slog"
	"github.com/umass-dining/dining/sqlite"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database path used when neither --db nor --database-url is set.
	DBPath string

	// Exactly one of DB and PG is opened by Run.
	DB *sqlite.DB
	PG *postgres.DB

	// Fetcher, if set before Run, replaces the HTTP or browser fetcher.
	Fetcher dining.Fetcher

	// Now returns the current time.
	Now func() time.Time

	logFile *os.File
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Now:    time.Now,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.Fetcher != nil {
		errs = append(errs, m.Fetcher.Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	if m.PG != nil {
		errs = append(errs, m.PG.Close())
	}
	if m.logFile != nil {
		errs = append(errs, m.logFile.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Now:    m.Now,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dining"),
		kong.Description("Scrape and store UMass Amherst dining hall menus"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'dining --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	logger, err := m.openLogger(stderr, cli.LogLevel, cli.LogFile)
	if err != nil {
		return err
	}
	deps.Logger = logger

	cmd := strings.Fields(kongCtx.Command())[0]
	if cmd == "halls" {
		return kongCtx.Run(deps)
	}

	menus, err := m.openStore(ctx, cli, stderr)
	if err != nil {
		return err
	}
	deps.Menus = diningslog.NewLoggingMenuItemService(menus, logger)
	deps.Scraper = &scrape.Scraper{
		Menus:       deps.Menus,
		Logger:      logger,
		BaseURL:     cli.BaseURL,
		RetryDelays: scrape.FixedDelays(cli.MaxRetries, cli.RetryDelay),
		Politeness:  cli.Politeness,
	}

	if cmd == "scrape" || cmd == "schedule" {
		fetcher, err := m.openFetcher(cli, stderr)
		if err != nil {
			return err
		}
		deps.Scraper.Fetcher = diningslog.NewLoggingFetcher(fetcher, logger)
		deps.Scraper.Extractor = diningslog.NewLoggingExtractor(newExtractor(cli.FoodOnly), logger)
	}

	return kongCtx.Run(deps)
}

// openLogger returns a text logger writing to w and, if path is set, to the
// file at path as well.
func (m *Main) openLogger(w io.Writer, level, path string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, dining.Errorf(dining.EINVALID, "invalid log level %q", level)
	}

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
		}
		m.logFile = f
		w = io.MultiWriter(w, f)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// openStore opens PostgreSQL when a database URL is configured and SQLite
// otherwise.
func (m *Main) openStore(ctx context.Context, cli *CLI, stderr io.Writer) (dining.MenuItemService, error) {
	if cli.DatabaseURL != "" {
		m.PG = postgres.NewDB(cli.DatabaseURL)
		if err := m.PG.Open(ctx); err != nil {
			fmt.Fprintln(stderr, "Hint: Check DATABASE_URL points at a reachable PostgreSQL server")
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return postgres.NewMenuItemService(m.PG), nil
	}

	path := m.DBPath
	if cli.DB != "" {
		path = cli.DB
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DINING_DB to use a different database path\n")
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return sqlite.NewMenuItemService(m.DB), nil
}

func (m *Main) openFetcher(cli *CLI, stderr io.Writer) (dining.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}

	headers, err := parseHeaders(cli.Header)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", dining.ErrorMessage(err))
		return nil, err
	}

	if cli.Browser {
		userAgent := dininghttp.DefaultUserAgent
		if ua, ok := headers["User-Agent"]; ok {
			userAgent = ua
		}
		fetcher, err := rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithUserAgent(userAgent),
		)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		m.Fetcher = fetcher
		return fetcher, nil
	}

	m.Fetcher = dininghttp.NewFetcher(
		dininghttp.WithTimeout(cli.Timeout),
		dininghttp.WithHeaders(headers),
	)
	return m.Fetcher, nil
}

func newExtractor(foodOnly bool) *goquery.Extractor {
	if foodOnly {
		return goquery.NewExtractor(goquery.WithItemFilter(dining.IsLikelyFoodItem))
	}
	return goquery.NewExtractor()
}

// parseHeaders parses "Key: Value" pairs into a map keyed by canonical
// header name.
func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, dining.Errorf(dining.EINVALID, "invalid header %q, want 'Key: Value'", v)
		}
		headers[textproto.CanonicalMIMEHeaderKey(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dining.db"
	}
	dir := filepath.Join(home, ".dining")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "dining.db")
}
