package location

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_locations (
	user_id      TEXT PRIMARY KEY,
	latitude     TEXT NOT NULL,
	longitude    TEXT NOT NULL,
	display_name TEXT NOT NULL
)`

// SQLiteBackend stores locations in an embedded SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (and creates if needed) the database at dbPath.
// dbPath may carry its own query parameters.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	file, _, _ := strings.Cut(strings.TrimPrefix(dbPath, "file:"), "?")
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// sqliteDSN appends WAL and busy-timeout settings to dbPath.
func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

func (b *SQLiteBackend) Load(ctx context.Context) (map[string]domain.UserLocation, error) {
	return loadRows(ctx, b.db, `SELECT user_id, latitude, longitude, display_name FROM user_locations`)
}

// Save replaces the table contents in a single transaction.
func (b *SQLiteBackend) Save(ctx context.Context, locations map[string]domain.UserLocation) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_locations`); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO user_locations (user_id, latitude, longitude, display_name) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for id, loc := range locations {
		if _, err := stmt.ExecContext(ctx, id, loc.Latitude, loc.Longitude, loc.DisplayName); err != nil {
			return fmt.Errorf("insert location %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) Ping(ctx context.Context) error { return b.db.PingContext(ctx) }

func (b *SQLiteBackend) Close() error { return b.db.Close() }

func loadRows(ctx context.Context, db *sql.DB, query string) (map[string]domain.UserLocation, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := make(map[string]domain.UserLocation)
	for rows.Next() {
		var loc domain.UserLocation
		if err := rows.Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.DisplayName); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations[loc.UserID] = loc
	}
	return locations, rows.Err()
}
