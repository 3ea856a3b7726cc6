package store

import (
	"context"
	"sync"

	"github.com/duktw/duk/internal/mapping"
)

// MemoryStore is an in-memory implementation of mapping.Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[mapping.Hash]*mapping.Mapping
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mappings: make(map[mapping.Hash]*mapping.Mapping)}
}

func (m *MemoryStore) Save(_ context.Context, mp *mapping.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *mp
	m.mappings[mp.Hash] = &copied

	return nil
}

func (m *MemoryStore) GetByHash(_ context.Context, hash mapping.Hash) (*mapping.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mp, ok := m.mappings[hash]
	if !ok {
		return nil, mapping.ErrNotFound
	}

	copied := *mp

	return &copied, nil
}

func (m *MemoryStore) IncrementViewCount(_ context.Context, hash mapping.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mp, ok := m.mappings[hash]
	if !ok {
		return mapping.ErrNotFound
	}

	mp.ViewCount++

	return nil
}

// Compile-time check.
var _ mapping.Repository = (*MemoryStore)(nil)
