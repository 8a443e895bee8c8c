// Package cache holds recently fetched price series for a short time so
// repeated runs over the same as-of date do not refetch.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"techtrack/pkg/model"
)

// DefaultTTL is how long a fetched series stays reusable
const DefaultTTL = 5 * time.Minute

// Store keeps series by key with an expiry
type Store interface {
	Get(ctx context.Context, key string) ([]model.Bar, bool, error)
	Set(ctx context.Context, key string, bars []model.Bar, ttl time.Duration) error
}

// Key builds the cache key for one fetch request
func Key(ticker, exchange string, asOf time.Time, lookbackDays int) string {
	return fmt.Sprintf("%s|%s|%s|%d",
		strings.ToUpper(ticker), strings.ToUpper(exchange), asOf.Format("2006-01-02"), lookbackDays)
}

type entry struct {
	bars    []model.Bar
	expires time.Time
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

// SetClock replaces the time source used for expiry
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get returns a copy of the cached series if present and not expired
func (m *MemoryStore) Get(_ context.Context, key string) ([]model.Bar, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	out := make([]model.Bar, len(e.bars))
	copy(out, e.bars)
	return out, true, nil
}

// Set stores a copy of bars for ttl
func (m *MemoryStore) Set(_ context.Context, key string, bars []model.Bar, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]model.Bar, len(bars))
	copy(stored, bars)
	m.items[key] = entry{bars: stored, expires: m.now().Add(ttl)}
	return nil
}

// Purge drops expired entries and returns how many remain
func (m *MemoryStore) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, k)
		}
	}
	return len(m.items)
}

// Len returns the number of stored entries, expired or not
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
