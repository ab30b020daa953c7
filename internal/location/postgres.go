package location

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS user_locations (
	user_id      TEXT PRIMARY KEY,
	latitude     TEXT NOT NULL,
	longitude    TEXT NOT NULL,
	display_name TEXT NOT NULL
)`

// PostgresBackend stores locations in a PostgreSQL table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to dsn and ensures the table exists.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Load(ctx context.Context) (map[string]domain.UserLocation, error) {
	rows, err := b.pool.Query(ctx, `SELECT user_id, latitude, longitude, display_name FROM user_locations`)
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

// Save replaces the table contents in a single transaction.
func (b *PostgresBackend) Save(ctx context.Context, locations map[string]domain.UserLocation) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM user_locations`); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}

	batch := &pgx.Batch{}
	for id, loc := range locations {
		batch.Queue(`INSERT INTO user_locations (user_id, latitude, longitude, display_name) VALUES ($1, $2, $3, $4)`,
			id, loc.Latitude, loc.Longitude, loc.DisplayName)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert locations: %w", err)
	}
	return tx.Commit(ctx)
}

func (b *PostgresBackend) Ping(ctx context.Context) error { return b.pool.Ping(ctx) }

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
