package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds rendered views until the state changes.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Flush drops every cached view.
	Flush(ctx context.Context)
}

const redisPrefix = "finance:view:"

// RedisCache is a Cache in a Redis database. Errors are treated as misses.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at url, either a redis:// URL
// or a host:port address.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, redisPrefix+key).Result()
	return value, err == nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	r.client.SetEx(ctx, redisPrefix+key, value, ttl)
}

func (r *RedisCache) Flush(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		r.client.Del(ctx, keys...)
	}
}

// Close closes the connection to Redis.
func (r *RedisCache) Close() error { return r.client.Close() }

// MemoryCache is a Cache local to the process.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expires: m.now().Add(ttl)}
}

func (m *MemoryCache) Flush(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}
