package cache

import (
	"context"
	"sync"
)

// Store holds encoded query results.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	// DeleteName removes every entry whose key has the given name.
	DeleteName(ctx context.Context, name string) error
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key.Name][key.Params]
	return value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byParams, ok := s.entries[key.Name]
	if !ok {
		byParams = make(map[string][]byte)
		s.entries[key.Name] = byParams
	}
	byParams[key.Params] = value
	return nil
}

func (s *MemoryStore) DeleteName(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, name)
	return nil
}

// Len reports the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byParams := range s.entries {
		n += len(byParams)
	}
	return n
}
