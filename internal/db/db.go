package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id          uuid PRIMARY KEY,
	temperature double precision NOT NULL,
	moisture    integer NOT NULL,
	observed_at double precision NOT NULL,
	received_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS readings_observed_at_idx ON readings (observed_at DESC);

CREATE TABLE IF NOT EXISTS alert_dispatches (
	id          uuid PRIMARY KEY,
	ordinal     integer NOT NULL,
	temperature double precision NOT NULL,
	status      text NOT NULL,
	message     text NOT NULL DEFAULT '',
	last_error  text NOT NULL DEFAULT '',
	created_at  timestamptz NOT NULL DEFAULT NOW(),
	updated_at  timestamptz NOT NULL DEFAULT NOW()
);`

// DB is the Postgres-backed reading store and alert log.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool. It does not contact the server.
func New(dsn string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Migrate creates the tables if they are missing.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (d *DB) Close() {
	d.Pool.Close()
}
