package timestore

import (
	"context"
	"fmt"
	"maps"

	"github.com/louisbranch/stabletime/internal/prefs"
)

// fakeStore is an in-memory prefs.Store for backend tests. Failure modes are
// injectable so silent-recovery paths can be exercised.
type fakeStore struct {
	mappings map[string]map[string]float64
	readErr  error
	writeErr error
	sets     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{mappings: make(map[string]map[string]float64)}
}

func (s *fakeStore) Mapping(_ context.Context, key string) (map[string]float64, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	values, ok := s.mappings[key]
	if !ok {
		return nil, prefs.ErrNotFound
	}
	return maps.Clone(values), nil
}

func (s *fakeStore) SetMapping(_ context.Context, key string, values map[string]float64) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.sets++
	s.mappings[key] = maps.Clone(values)
	return nil
}

// fakeCatalog resolves suites from a fixed set; unknown names fail like an
// unresolvable platform group.
type fakeCatalog struct {
	standard *fakeStore
	suites   map[string]*fakeStore
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		standard: newFakeStore(),
		suites:   make(map[string]*fakeStore),
	}
}

func (c *fakeCatalog) addSuite(name string) *fakeStore {
	store := newFakeStore()
	c.suites[name] = store
	return store
}

func (c *fakeCatalog) Standard() prefs.Store {
	return c.standard
}

func (c *fakeCatalog) Suite(name string) (prefs.Store, error) {
	store, ok := c.suites[name]
	if !ok {
		return nil, fmt.Errorf("suite %q is not resolvable", name)
	}
	return store, nil
}
