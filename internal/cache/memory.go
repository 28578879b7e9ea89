package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process fallback backend. Expiry is applied
// synchronously at read time: touching an expired entry removes it and
// acts as a miss or a fresh window. Only locally consistent; acceptable
// because it is an explicitly inferior fallback, not the primary path.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time
}

type memEntry struct {
	payload   []byte
	count     int64
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if m.now().After(ent.expiresAt) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	if ent.payload == nil {
		return nil, ErrMiss
	}
	return ent.payload, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &memEntry{payload: val, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	ent, ok := m.entries[key]
	if !ok || now.After(ent.expiresAt) {
		ent = &memEntry{count: 1, expiresAt: now.Add(window)}
		m.entries[key] = ent
		return 1, window, nil
	}
	ent.count++
	return ent.count, ent.expiresAt.Sub(now), nil
}
