// Package runstore persists the last-seen run identifier so a new run can be
// detected across restarts.
package runstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RunIDKey is the meta key the run identifier is stored under.
const RunIDKey = "run_id"

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// MemoryStore keeps the run identifier in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	runID string
}

// NewMemoryStore creates an empty in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadRunID returns the stored run id, or "" if none was stored.
func (s *MemoryStore) LoadRunID(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID, nil
}

// SaveRunID replaces the stored run id.
func (s *MemoryStore) SaveRunID(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	return nil
}
