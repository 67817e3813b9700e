package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoleKey is the key under which the last selected role is persisted.
const RoleKey = "role"

var (
	// ErrEmptySlot indicates nothing has been persisted.
	ErrEmptySlot = errors.New("session: slot empty")
	// ErrDisposed is returned by a Store after Dispose.
	ErrDisposed = errors.New("session: store disposed")
)

// Slot is the durable key-value slot holding the last selected role.
type Slot interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, role string) error
	Clear(ctx context.Context) error
}

// MemorySlot keeps the role in process memory. Two stores sharing one
// MemorySlot behave like a restart over the same storage.
type MemorySlot struct {
	mu    sync.Mutex
	value string
	set   bool
}

// NewMemorySlot returns an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ErrEmptySlot
	}
	return m.value, nil
}

func (m *MemorySlot) Save(ctx context.Context, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = role
	m.set = true
	return nil
}

func (m *MemorySlot) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	m.set = false
	return nil
}

// RedisSlot persists the role under a single Redis key.
type RedisSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSlot constructs a RedisSlot. A zero ttl keeps the key forever.
func NewRedisSlot(client *redis.Client, key string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, key: key, ttl: ttl}
}

func (r *RedisSlot) Load(ctx context.Context) (string, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmptySlot
		}
		return "", fmt.Errorf("session: redis load: %w", err)
	}
	return value, nil
}

func (r *RedisSlot) Save(ctx context.Context, role string) error {
	if err := r.client.Set(ctx, r.key, role, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (r *RedisSlot) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: redis clear: %w", err)
	}
	return nil
}

// Values is the subset of a cookie session used to hold the role.
type Values interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// ValuesSlot stores the role inside a per-browser session. The session
// manager persists the values when the response is committed.
type ValuesSlot struct {
	values Values
}

// NewValuesSlot wraps a session value bag.
func NewValuesSlot(values Values) *ValuesSlot {
	return &ValuesSlot{values: values}
}

func (v *ValuesSlot) Load(ctx context.Context) (string, error) {
	if v.values == nil {
		return "", ErrEmptySlot
	}
	value := v.values.Get(RoleKey)
	if value == "" {
		return "", ErrEmptySlot
	}
	return value, nil
}

func (v *ValuesSlot) Save(ctx context.Context, role string) error {
	if v.values == nil {
		return errors.New("session: no session values")
	}
	v.values.Set(RoleKey, role)
	return nil
}

func (v *ValuesSlot) Clear(ctx context.Context) error {
	if v.values == nil {
		return nil
	}
	v.values.Delete(RoleKey)
	return nil
}

var (
	_ Slot = (*MemorySlot)(nil)
	_ Slot = (*RedisSlot)(nil)
	_ Slot = (*ValuesSlot)(nil)
)
