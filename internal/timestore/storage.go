package timestore

import (
	"context"
	"fmt"

	"github.com/louisbranch/stabletime/internal/prefs"
	"github.com/louisbranch/stabletime/internal/timepoint"
)

// Storage is the facade callers hold. It binds exactly one backend at
// construction, per the given policy, and forwards reads and writes to it
// for its entire lifetime.
type Storage struct {
	backend Backend
}

// Option customizes Storage construction.
type Option func(*options)

type options struct {
	monitor Monitor
}

// WithMonitor registers a diagnostic observer for silently recovered
// storage failures.
func WithMonitor(monitor Monitor) Option {
	return func(o *options) {
		o.monitor = monitor
	}
}

// New maps the policy to exactly one backend. Standard binds the catalog's
// default partition; SharedGroup binds the named suite, falling back to the
// default partition when resolution fails; Memory ignores the catalog
// entirely. Persistent policies require a catalog so the medium is an
// explicit dependency rather than ambient state.
func New(policy Policy, catalog prefs.Catalog, opts ...Option) (*Storage, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if policy.kind == memoryKind {
		return &Storage{backend: NewMemory()}, nil
	}

	if catalog == nil {
		return nil, fmt.Errorf("preference catalog is required for %s policy", policy)
	}

	store := catalog.Standard()
	group := ""
	if policy.kind == sharedGroupKind {
		group = policy.group
		suite, err := catalog.Suite(policy.group)
		if err != nil {
			o.monitor.observe(Diagnostic{Op: OpResolveSuite, Group: policy.group, Err: err})
		} else {
			store = suite
		}
	}

	backend, err := NewPersistent(store, group, o.monitor)
	if err != nil {
		return nil, err
	}
	return &Storage{backend: backend}, nil
}

// Current returns the cached snapshot, reporting false when absent.
func (s *Storage) Current(ctx context.Context) (timepoint.Snapshot, bool) {
	if s == nil || s.backend == nil {
		return timepoint.Snapshot{}, false
	}
	return s.backend.Current(ctx)
}

// SetCurrent replaces the cached snapshot. A nil snapshot is ignored and
// never clears the stored value.
func (s *Storage) SetCurrent(ctx context.Context, snap *timepoint.Snapshot) error {
	if s == nil || s.backend == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.backend.SetCurrent(ctx, snap)
}
