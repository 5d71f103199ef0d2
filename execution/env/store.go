package env

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// store is a mutex-guarded name map, optionally case-insensitive.
type store[V any] struct {
	mu   sync.RWMutex
	fold bool
	m    map[string]V
}

func newStore[V any](caseInsensitive bool) *store[V] {
	return &store[V]{fold: caseInsensitive, m: make(map[string]V)}
}

func (s *store[V]) key(name string) string {
	if s.fold {
		return strings.ToLower(name)
	}
	return name
}

func (s *store[V]) get(name string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[s.key(name)]
	return v, ok
}

func (s *store[V]) set(name string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[s.key(name)] = v
}

func (s *store[V]) delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(name)
	_, ok := s.m[k]
	delete(s.m, k)
	return ok
}

func (s *store[V]) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.m))
}
