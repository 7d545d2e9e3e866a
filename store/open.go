package store

import (
	"context"
	"fmt"
	"time"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDir      = "dir"
	DriverMemory   = "memory"
)

// Open opens a store by driver name. dsn is a file path for sqlite (empty
// for SQLitePath), a URL for postgres and a directory for dir.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			path, err := SQLitePath()
			if err != nil {
				return nil, err
			}
			dsn = path
		}
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, PostgresOptions{MaxRetries: 60, RetryDelay: 2 * time.Second})
	case DriverDir:
		return OpenDir(dsn)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
