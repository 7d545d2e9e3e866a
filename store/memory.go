package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is a Store that lives in memory, for tests and throw away servers.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory { return &Memory{docs: map[string][]byte{}} }

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := check(key, nil); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return slices.Clone(data), nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if err := check(key, data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = slices.Clone(data)
	return nil
}

func (m *Memory) Close() error { return nil }
