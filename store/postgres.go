package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	get: "SELECT json FROM app_state WHERE id = $1",
	put: `INSERT INTO app_state (id, json, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET json = EXCLUDED.json, updated_at = EXCLUDED.updated_at`,
	updatedAt: "SELECT updated_at FROM app_state WHERE id = $1",
}

// PostgresOptions controls how OpenPostgres waits for the database.
type PostgresOptions struct {
	MaxRetries int           // attempts to reach the database, at least one.
	RetryDelay time.Duration // delay between attempts.
}

// normalizeDatabaseURL accepts postgresql:// URLs and disables SSL unless
// the URL says otherwise.
func normalizeDatabaseURL(url string) string {
	if rest, ok := strings.CutPrefix(url, "postgresql:"); ok {
		url = "postgres:" + rest
	}
	if !strings.Contains(url, "sslmode=") {
		separator := "?"
		if strings.Contains(url, "?") {
			separator = "&"
		}
		url = url + separator + "sslmode=disable"
	}
	return url
}

// OpenPostgres connects to a PostgreSQL database, waiting for it to be ready,
// and creates the app_state table.
func OpenPostgres(ctx context.Context, url string, opts PostgresOptions) (*SQL, error) {
	config, err := pgx.ParseConfig(normalizeDatabaseURL(url))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	retries := max(opts.MaxRetries, 1)

	db := stdlib.OpenDB(*config)
	for i := 0; ; i++ {
		err := db.PingContext(ctx)
		if err == nil {
			break
		}
		if i == retries-1 {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries, err)
		}
		log.Printf("Database not ready, retrying in %v... (attempt %d/%d) Error: %v", opts.RetryDelay, i+1, retries, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	log.Println("Database connection established")

	const schema = `
		CREATE TABLE IF NOT EXISTS app_state (
			id VARCHAR(255) PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQL{db: db, q: postgresDialect}, nil
}
