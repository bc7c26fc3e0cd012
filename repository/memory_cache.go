package repository

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often Set drops expired entries.
const sweepInterval = time.Minute

type cacheItem struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process CacheRepository used when redis is not
// configured, and in tests. Expired entries are dropped on read and by a
// periodic sweep from Set.
type MemoryCache struct {
	mu        sync.RWMutex
	data      map[string]cacheItem
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	item, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !item.expiresAt.IsZero() && m.now().After(item.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false
	}
	return item.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	item := cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = item
	m.sweepLocked()
	return nil
}

// sweepLocked removes expired entries if sweepInterval has passed since the
// last sweep. m.mu must be held.
func (m *MemoryCache) sweepLocked() {
	now := m.now()
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for key, item := range m.data {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			delete(m.data, key)
		}
	}
}

// Len returns the number of stored keys, including expired ones not yet
// swept.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

var _ CacheRepository = (*MemoryCache)(nil)
