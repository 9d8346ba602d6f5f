package selection

import "sync"

// MemoryStore keeps selections in memory for the process lifetime.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Namespace]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Namespace]map[string]string)}
}

func (s *MemoryStore) Get(ns Namespace, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[ns][key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ns Namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[ns] == nil {
		s.data[ns] = make(map[string]string)
	}
	s.data[ns][key] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }
