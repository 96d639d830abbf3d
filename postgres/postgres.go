// Package postgres provides PostgreSQL-based storage for menu items.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB represents a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
	url  string

	// Now returns the current time. Retention cutoffs are computed from it.
	Now func() time.Time
}

// NewDB creates a new DB for the given connection URL.
func NewDB(url string) *DB {
	return &DB{url: url, Now: time.Now}
}

// Open connects to the database and applies migrations.
func (db *DB) Open(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, db.url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db.pool = pool

	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return err
	}
	return nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// migrate applies every embedded migration in name order. Migrations are
// written to be idempotent.
func (db *DB) migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
