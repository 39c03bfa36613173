package timestore

import (
	"context"
	"sync"

	"github.com/louisbranch/stabletime/internal/timepoint"
)

// Memory caches the snapshot's serialized mapping in a process-local field.
// The cache is lost on process exit and never shared between instances.
type Memory struct {
	mu     sync.Mutex
	values map[string]float64
}

var _ Backend = (*Memory)(nil)

// NewMemory builds an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Current decodes and returns the held mapping.
func (m *Memory) Current(_ context.Context) (timepoint.Snapshot, bool) {
	if m == nil {
		return timepoint.Snapshot{}, false
	}
	m.mu.Lock()
	values := m.values
	m.mu.Unlock()
	if values == nil {
		return timepoint.Snapshot{}, false
	}
	return timepoint.FromMapping(values)
}

// SetCurrent replaces the held mapping with the snapshot's serialized form.
// A nil snapshot leaves the previous value in place.
func (m *Memory) SetCurrent(_ context.Context, snap *timepoint.Snapshot) error {
	if m == nil || snap == nil {
		return nil
	}
	values := snap.Mapping()
	m.mu.Lock()
	m.values = values
	m.mu.Unlock()
	return nil
}
