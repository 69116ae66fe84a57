package store

import (
	"context"
	"sync"

	"github.com/savedlinks/thumbnailer/internal/thumbnail"
)

type memoryBlob struct {
	data []byte
	meta thumbnail.BlobMetadata
}

// MemoryBlobStore is an in-memory implementation of thumbnail.BlobStore.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

// NewMemoryBlobStore creates a new in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		blobs: make(map[string]memoryBlob),
	}
}

func (m *MemoryBlobStore) Put(_ context.Context, path string, data []byte, meta thumbnail.BlobMetadata) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[path] = memoryBlob{data: data, meta: meta}

	return "blob://" + path, nil
}

func (m *MemoryBlobStore) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[path]
	if !ok {
		return nil, thumbnail.ErrNotFound
	}

	return blob.data, nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, path)

	return nil
}

// Len returns the number of stored blobs.
func (m *MemoryBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blobs)
}

// Compile-time check.
var _ thumbnail.BlobStore = (*MemoryBlobStore)(nil)
