// Package redistest provides an in-memory IRedisRepositories for tests.
package redistest

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"

	"aneka-keramik/pkg/redis"
)

var _ redis.IRedisRepositories = (*Memory)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a map-backed IRedisRepositories. Set Err to make every call fail.
type Memory struct {
	mu   sync.Mutex
	data map[string]entry
	Now  func() time.Time
	Err  error
}

func NewMemory() *Memory {
	return &Memory{data: map[string]entry{}, Now: time.Now}
}

func (m *Memory) live(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.Now().Before(e.expiresAt) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) Set(ctx context.Context, key string, data []byte, expiredTime time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	e := entry{value: string(data)}
	if expiredTime > 0 {
		e.expiresAt = m.Now().Add(expiredTime)
	}
	m.data[key] = e
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	e, ok := m.live(key)
	if !ok {
		return "", redis.ErrKeyNotFound
	}
	return e.value, nil
}

func (m *Memory) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.live(key)
	return ok, nil
}

func (m *Memory) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	e, ok := m.live(key)
	if !ok {
		return -2, nil
	}
	if e.expiresAt.IsZero() {
		return -1, nil
	}
	return e.expiresAt.Sub(m.Now()), nil
}

func (m *Memory) IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, 0, m.Err
	}
	e, ok := m.live(key)
	var count int64
	if ok {
		count, _ = strconv.ParseInt(e.value, 10, 64)
	} else {
		e.expiresAt = m.Now().Add(window)
	}
	count++
	e.value = strconv.FormatInt(count, 10)
	m.data[key] = e
	return count, e.expiresAt.Sub(m.Now()), nil
}

func (m *Memory) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	deleted := 0
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.data, key)
			deleted++
		}
	}
	return deleted, nil
}

// Keys returns the live keys, for assertions.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if _, ok := m.live(key); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
