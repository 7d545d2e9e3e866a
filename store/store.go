// Package store persists finance state snapshots.
//
// A store is a key/value table of JSON documents, the way the dashboard
// always saved its state: one row per key, the current state under StateKey
// and the state replaced by the last import under BackupKey.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/etnz/finance"
)

// Keys of the rows written by the helpers of this package.
const (
	StateKey  = "financeState-v1"
	BackupKey = "financeBackup-v1"
)

var (
	// ErrNotFound is returned by Get when a key has no value.
	ErrNotFound = errors.New("not found")
	// ErrInvalidKey is returned for keys that are not 1 to 255 letters,
	// digits, '-' or '_'.
	ErrInvalidKey = errors.New("invalid key")
	// ErrTooLarge is returned when writing a document larger than finance.MaxSnapshotSize.
	ErrTooLarge = errors.New("document too large")
)

// Store is a key/value table of JSON documents.
type Store interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

var keyFormat = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// check validates a key and, when not nil, the document to write under it.
func check(key string, data []byte) error {
	if !keyFormat.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if len(data) > finance.MaxSnapshotSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	return nil
}

// LoadState returns the persisted state snapshot, nil if there is none.
// The snapshot is meant to be normalized by the engine.
func LoadState(ctx context.Context, st Store) ([]byte, error) {
	data, err := st.Get(ctx, StateKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load state: %w", err)
	}
	return data, nil
}

// SaveState persists s under StateKey.
func SaveState(ctx context.Context, st Store, s *finance.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("cannot encode state: %w", err)
	}
	if err := st.Put(ctx, StateKey, data); err != nil {
		return fmt.Errorf("cannot save state: %w", err)
	}
	return nil
}

// Backup copies the persisted state, "null" if there is none, under BackupKey.
func Backup(ctx context.Context, st Store) error {
	data, err := LoadState(ctx, st)
	if err != nil {
		return err
	}
	if data == nil {
		data = []byte("null")
	}
	if err := st.Put(ctx, BackupKey, data); err != nil {
		return fmt.Errorf("cannot write backup: %w", err)
	}
	return nil
}

// Export returns the persisted state wrapped in an export envelope.
func Export(ctx context.Context, st Store, now time.Time) ([]byte, error) {
	data, err := LoadState(ctx, st)
	if err != nil {
		return nil, err
	}
	return finance.ExportRaw(data, now)
}

// Import validates an export envelope, backs up the persisted state and
// replaces it by the envelope's state. The imported state is returned raw.
func Import(ctx context.Context, st Store, envelope []byte) ([]byte, error) {
	state, err := finance.ImportEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	if err := Backup(ctx, st); err != nil {
		return nil, err
	}
	if err := st.Put(ctx, StateKey, state); err != nil {
		return nil, fmt.Errorf("cannot save imported state: %w", err)
	}
	return state, nil
}

// Hook returns a dispatcher hook saving every committed state.
func Hook(st Store) finance.CommitFunc {
	return func(ctx context.Context, s *finance.State, cmd finance.Command) error {
		return SaveState(ctx, st, s)
	}
}
