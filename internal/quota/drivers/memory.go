package drivers

import (
	"context"
	"sync"

	"github.com/emojilens/backend/internal/quota"
)

// MemoryStore implements quota.Store with an in-memory map, suitable for
// single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]quota.Record
}

// NewMemoryStore creates an empty in-memory quota store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]quota.Record),
	}
}

// Get implements quota.Store.
func (s *MemoryStore) Get(_ context.Context, clientID string) (*quota.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[clientID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put implements quota.Store.
func (s *MemoryStore) Put(_ context.Context, clientID string, record quota.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[clientID] = record
	return nil
}

// Close implements quota.Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}
