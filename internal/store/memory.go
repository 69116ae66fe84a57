package store

import (
	"context"
	"sync"
	"time"

	"github.com/savedlinks/thumbnailer/internal/thumbnail"
)

// MemoryStore is an in-memory implementation of thumbnail.MetadataRepository.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*thumbnail.Record // key -> record
}

// NewMemoryStore creates a new in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*thumbnail.Record),
	}
}

func (m *MemoryStore) Save(_ context.Context, record *thumbnail.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// First writer wins, matching the postgres ON CONFLICT DO NOTHING.
	if _, exists := m.records[record.Key]; exists {
		return nil
	}

	clone := *record
	m.records[record.Key] = &clone

	return nil
}

func (m *MemoryStore) GetByKey(_ context.Context, key string) (*thumbnail.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[key]
	if !ok {
		return nil, thumbnail.ErrNotFound
	}

	clone := *record

	return &clone, nil
}

func (m *MemoryStore) GetByHash(ctx context.Context, hash thumbnail.URLHash) (*thumbnail.Record, error) {
	record, err := m.GetByKey(ctx, string(hash))
	if err != nil {
		return nil, err
	}

	if record.URLHash != hash {
		return nil, thumbnail.ErrNotFound
	}

	return record, nil
}

func (m *MemoryStore) Touch(_ context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[key]
	if !ok {
		return thumbnail.ErrNotFound
	}

	record.AccessCount++
	record.LastAccessedAt = at
	record.UpdatedAt = at

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)

	return nil
}

// Compile-time check.
var _ thumbnail.MetadataRepository = (*MemoryStore)(nil)
