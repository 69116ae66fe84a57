package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryCapacity bounds the memory tier. The bound is advisory:
// when a sweep frees nothing the write still goes through.
const DefaultMemoryCapacity = 100

// MemoryTier is a capacity-bounded in-memory cache tier. When a write
// finds the tier at capacity it first sweeps expired entries; this is a
// size-triggered cleanup, not LRU eviction.
type MemoryTier struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	capacity int
}

// NewMemoryTier creates a memory tier with the given capacity. A
// capacity <= 0 falls back to DefaultMemoryCapacity.
func NewMemoryTier(capacity int) *MemoryTier {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}

	return &MemoryTier{
		entries:  make(map[string]*Entry),
		capacity: capacity,
	}
}

func (m *MemoryTier) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}

	if entry.Expired(time.Now()) {
		delete(m.entries, key)

		return nil, nil
	}

	return entry, nil
}

func (m *MemoryTier) Set(_ context.Context, key string, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.sweepLocked(time.Now())
	}

	m.entries[key] = entry

	return nil
}

func (m *MemoryTier) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return nil
}

func (m *MemoryTier) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry)

	return nil
}

// Len returns the current number of entries, expired ones included.
func (m *MemoryTier) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

func (m *MemoryTier) sweepLocked(now time.Time) {
	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
		}
	}
}
