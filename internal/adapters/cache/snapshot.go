// Package cache keeps the last successfully fetched page of every list per
// session, so a failed fetch on a later request can still show rows.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when no snapshot is stored under a key
var ErrMiss = errors.New("snapshot miss")

// SnapshotStore stores encoded list pages
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

// Key builds the snapshot key of one list for one session owner
func Key(owner, entity string) string {
	return "clinic-console:snapshot:" + owner + ":" + entity
}

// RedisStore keeps snapshots in Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, err
	}
	return val, nil
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type entry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps snapshots in process memory. Used when REDIS_ADDR is unset.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{data: append([]byte(nil), data...), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (m.ttl > 0 && m.now().After(e.expires)) {
		return nil, ErrMiss
	}
	return e.data, nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
