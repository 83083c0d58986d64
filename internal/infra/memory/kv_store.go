package memory

import (
	"context"
	"sync"
)

// KeyValueStore is an in-memory implementation of progress.KeyValueStore,
// used in tests and in single-process demo mode.
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{values: make(map[string]string)}
}

func (s *KeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *KeyValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
