// Package sqlite provides an embedded, per-record store for users and books
// backed by the pure-Go SQLite driver. Queries are built with goqu.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/sirpyerre/library-tracker/internal/core/domain"
	"github.com/sirpyerre/library-tracker/internal/pkg/metrics"
)

const (
	backend = "sqlite"

	tableUsers = "users"
	tableBooks = "books"
	tableMeta  = "meta"

	timeLayout = time.RFC3339Nano
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		username     TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS books (
		seq           INTEGER PRIMARY KEY AUTOINCREMENT,
		id            TEXT NOT NULL UNIQUE,
		title         TEXT NOT NULL,
		author        TEXT NOT NULL,
		isbn          TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL CHECK (status IN ('available', 'borrowed')),
		borrowed_by   TEXT,
		borrower_name TEXT,
		borrow_date   TEXT,
		added_at      TEXT NOT NULL
	);`,
}

// DB wraps the SQLite connection and its goqu query builder.
type DB struct {
	sql *sql.DB
	q   *goqu.Database
}

// Open opens (or creates) the database at path, applies the schema and seeds
// the default catalog on first use.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range schema {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	db := &DB{sql: sqlDB, q: goqu.New("sqlite3", sqlDB)}
	if err := db.seed(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping verifies the connection is usable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// seed inserts the default catalog once per database, in one transaction
// with the meta marker.
func (d *DB) seed(ctx context.Context) error {
	return d.q.WithTx(func(tx *goqu.TxDatabase) error {
		res, err := tx.Insert(tableMeta).
			Rows(goqu.Record{"key": "seeded_at", "value": time.Now().UTC().Format(timeLayout)}).
			OnConflict(goqu.DoNothing()).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("mark seed: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		for _, b := range domain.SeedBooks(time.Now()) {
			if _, err := tx.Insert(tableBooks).Rows(bookRecord(b)).Executor().ExecContext(ctx); err != nil {
				return fmt.Errorf("seed books: %w", err)
			}
		}
		return nil
	})
}

func writeFailed(op string, err error) error {
	metrics.StoreWriteErrorsTotal.WithLabelValues(backend).Inc()
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
