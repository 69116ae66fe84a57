package bookmarks

import (
	"context"
	"sync"

	"github.com/savedlinks/thumbnailer/internal/thumbnail"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu        sync.RWMutex
	bookmarks map[string]*Bookmark
}

// NewMemoryStore creates a new in-memory bookmark store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookmarks: make(map[string]*Bookmark),
	}
}

func (m *MemoryStore) Save(_ context.Context, bookmark *Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *bookmark
	m.bookmarks[bookmark.ID] = &clone

	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bookmark, ok := m.bookmarks[id]
	if !ok {
		return nil, thumbnail.ErrNotFound
	}

	clone := *bookmark

	return &clone, nil
}

func (m *MemoryStore) Update(_ context.Context, bookmark *Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.bookmarks[bookmark.ID]
	if !ok || existing.OwnerID != bookmark.OwnerID {
		return thumbnail.ErrNotFound
	}

	clone := *bookmark
	m.bookmarks[bookmark.ID] = &clone

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.bookmarks, id)

	return nil
}

func (m *MemoryStore) ListURLsByOwner(_ context.Context, ownerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var urls []string

	for _, bookmark := range m.bookmarks {
		if bookmark.OwnerID == ownerID {
			urls = append(urls, bookmark.URL)
		}
	}

	return urls, nil
}

func (m *MemoryStore) CountByURL(_ context.Context, url string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64

	for _, bookmark := range m.bookmarks {
		if bookmark.URL == url {
			count++
		}
	}

	return count, nil
}

// Compile-time check.
var _ Store = (*MemoryStore)(nil)
