package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/tablewatch/pkg/domain"
)

// Store implements ports.CursorStore in memory.
// Safe for concurrent use. Cursors do not survive a process restart.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// Save persists the cursor in memory.
func (s *Store) Save(ctx context.Context, key string, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cursor
	return nil
}

// Load retrieves the cursor from memory.
func (s *Store) Load(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, ok := s.data[key]
	if !ok {
		return "", domain.ErrCursorNotFound
	}
	return cursor, nil
}

// Delete removes the cursor.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
