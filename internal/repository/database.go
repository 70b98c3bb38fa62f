package repository

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool used by the repository, so pgxmock can stand in for it.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewDatabase opens a connection pool to PostgreSQL and verifies it with a ping.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}

	return Connect(context.Background(), dsn.String())
}

// Connect opens a connection pool for the given connection string and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS shipments (
		shipment_id           BIGINT PRIMARY KEY,
		origin_line1          TEXT,
		origin_line2          TEXT,
		origin_city           TEXT,
		origin_state          TEXT,
		origin_pincode        TEXT,
		origin_country        TEXT,
		origin_latitude       DOUBLE PRECISION,
		origin_longitude      DOUBLE PRECISION,
		destination_line1     TEXT,
		destination_line2     TEXT,
		destination_city      TEXT,
		destination_state     TEXT,
		destination_pincode   TEXT,
		destination_country   TEXT,
		destination_latitude  DOUBLE PRECISION,
		destination_longitude DOUBLE PRECISION,
		geocoding_attempts    INTEGER NOT NULL DEFAULT 0,
		geocoding_error       TEXT,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS geocode_cache (
		provider   TEXT NOT NULL,
		query      TEXT NOT NULL,
		latitude   DOUBLE PRECISION NOT NULL,
		longitude  DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (provider, query)
	);
`

// EnsureSchema creates the tables used by the service if they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
