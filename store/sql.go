package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// dialect holds the queries on the app_state table for a SQL database.
type dialect struct {
	get       string
	put       string
	updatedAt string
}

// SQL is a Store backed by the app_state table of a SQL database.
type SQL struct {
	db *sql.DB
	q  dialect
}

// DB returns the underlying database.
func (s *SQL) DB() *sql.DB { return s.db }

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	if err := check(key, nil); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return []byte(data), nil
}

func (s *SQL) Put(ctx context.Context, key string, data []byte) error {
	if err := check(key, data); err != nil {
		return err
	}
	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, s.q.put, key, string(data), updatedAt); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }

// UpdatedAt returns when key was last written.
func (s *SQL) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	if err := check(key, nil); err != nil {
		return time.Time{}, err
	}
	var raw string
	err := s.db.QueryRowContext(ctx, s.q.updatedAt, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read %q: %w", key, err)
	}
	return time.Parse(time.RFC3339Nano, raw)
}
