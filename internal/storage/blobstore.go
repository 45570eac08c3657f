// Package storage holds binary assets, currently doctor profile images.
package storage

import (
	"context"
	"sync"
)

// Blob is a stored object with its content type.
type Blob struct {
	ContentType string
	Data        []byte
}

// BlobStore persists binary objects under string keys.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (*Blob, error)
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned when the key has no object.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "storage: object not found" }

// MemoryStore is an in-process BlobStore for local development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string]Blob{}}
}

// Put implements BlobStore.
func (m *MemoryStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)
	m.mu.Lock()
	m.blobs[key] = Blob{ContentType: contentType, Data: copied}
	m.mu.Unlock()
	return nil
}

// Get implements BlobStore.
func (m *MemoryStore) Get(ctx context.Context, key string) (*Blob, error) {
	m.mu.RLock()
	blob, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &blob, nil
}

// Delete implements BlobStore.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}
