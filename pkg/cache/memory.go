package cache

import (
	"context"
	"sync"
)

// DefaultMemoryQuota mirrors the usual browser session storage allowance.
const DefaultMemoryQuota = 5 << 20

// MemoryStore is an in-process Store bounded by a total byte quota.
// Keys and values both count against the quota.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	used    int
	quota   int
}

// NewMemoryStore creates a store holding at most quota bytes.
// A quota <= 0 selects DefaultMemoryQuota.
func NewMemoryStore(quota int) *MemoryStore {
	if quota <= 0 {
		quota = DefaultMemoryQuota
	}
	return &MemoryStore{
		entries: make(map[string][]byte),
		quota:   quota,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + len(key) + len(value)
	if old, ok := s.entries[key]; ok {
		used -= len(key) + len(old)
	}
	if used > s.quota {
		return ErrQuotaExceeded
	}

	v := make([]byte, len(value))
	copy(v, value)
	s.entries[key] = v
	s.used = used
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.entries, key)
	}
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]byte)
	s.used = 0
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Used returns the number of bytes counted against the quota.
func (s *MemoryStore) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}
