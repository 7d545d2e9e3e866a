package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchemaVersion = 2

var sqliteDialect = dialect{
	get:       "SELECT json FROM app_state WHERE id = ?",
	put:       "INSERT OR REPLACE INTO app_state (id, json, updated_at) VALUES (?, ?, ?)",
	updatedAt: "SELECT updated_at FROM app_state WHERE id = ?",
}

// SQLitePath returns the database file used by default: $FINANCE_DB_PATH,
// or finance/finance.db in the user config directory.
func SQLitePath() (string, error) {
	if dbPath := strings.TrimSpace(os.Getenv("FINANCE_DB_PATH")); dbPath != "" {
		return dbPath, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(configDir, "finance", "finance.db"), nil
}

// OpenSQLite opens, creating it if needed, the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection serializes writers.
	db.SetMaxOpenConns(1)
	if err := runSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQL{db: db, q: sqliteDialect}, nil
}

func runSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	const bootstrapSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  version INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_migrations (id, version) VALUES (1, 1);
`
	if _, err := db.ExecContext(ctx, bootstrapSchema); err != nil {
		return fmt.Errorf("run sqlite migrations: %w", err)
	}

	var currentVersion int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE id = 1").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read sqlite schema version: %w", err)
	}
	if currentVersion > sqliteSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, sqliteSchemaVersion)
	}
	if currentVersion < 2 {
		if err := applySQLiteV2(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

func applySQLiteV2(ctx context.Context, db *sql.DB) (err error) {
	const schema = `
CREATE TABLE IF NOT EXISTS app_state (
  id TEXT PRIMARY KEY,
  json TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite migration v2 transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run sqlite v2 migrations: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "UPDATE schema_migrations SET version = 2 WHERE id = 1"); err != nil {
		return fmt.Errorf("update sqlite schema version to 2: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite v2 migrations: %w", err)
	}
	return nil
}
