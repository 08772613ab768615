package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgxpool.Pool the repositories use. Both
// *pgxpool.Pool and the pgxmock pool satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func OpenDB(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("error parsing DSN: %w", err)
	}

	config.MaxConns = 100
	config.MinConns = 5
	config.MaxConnIdleTime = 20 * time.Second

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Migrate creates the tables if they don't exist. The foreign key carries
// ON DELETE CASCADE so feedback can never outlive its owner even outside
// DeleteUser's transaction.
func Migrate(ctx context.Context, db DBTX) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                SERIAL PRIMARY KEY,
			username          VARCHAR(20) UNIQUE NOT NULL,
			password_hash     TEXT NOT NULL,
			email             VARCHAR(50) NOT NULL,
			first_name        VARCHAR(30) NOT NULL,
			last_name         VARCHAR(30) NOT NULL,
			one_time_password TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS feedback (
			id      SERIAL PRIMARY KEY,
			title   VARCHAR(100) NOT NULL,
			content TEXT NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("creating feedback table: %w", err)
	}

	return nil
}
