package timestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/stabletime/internal/prefs"
	"github.com/louisbranch/stabletime/internal/timepoint"
)

// Persistent caches the snapshot's serialized mapping in one suite partition
// of a preference store, under StableTimeKey. A value written by a prior
// process run is visible to a fresh backend bound to the same partition.
type Persistent struct {
	store   prefs.Store
	group   string
	monitor Monitor
}

var _ Backend = (*Persistent)(nil)

// NewPersistent binds a backend to the given partition. The group is only
// used to label diagnostics; binding happens through the store handle.
func NewPersistent(store prefs.Store, group string, monitor Monitor) (*Persistent, error) {
	if store == nil {
		return nil, fmt.Errorf("preference store is required")
	}
	return &Persistent{store: store, group: group, monitor: monitor}, nil
}

// Current reads the mapping under StableTimeKey and decodes it. Every
// failure on this path degrades to absence: a missing value is the normal
// empty state, and medium errors or undecodable mappings are reported to the
// monitor but never to the caller.
func (p *Persistent) Current(ctx context.Context) (timepoint.Snapshot, bool) {
	if p == nil || p.store == nil {
		return timepoint.Snapshot{}, false
	}
	values, err := p.store.Mapping(ctx, StableTimeKey)
	if err != nil {
		if !errors.Is(err, prefs.ErrNotFound) {
			p.monitor.observe(Diagnostic{Op: OpRead, Group: p.group, Key: StableTimeKey, Err: err})
		}
		return timepoint.Snapshot{}, false
	}
	snap, ok := timepoint.FromMapping(values)
	if !ok {
		p.monitor.observe(Diagnostic{Op: OpDecode, Group: p.group, Key: StableTimeKey})
		return timepoint.Snapshot{}, false
	}
	return snap, true
}

// SetCurrent writes the snapshot's serialized form under StableTimeKey,
// overwriting any prior value. A nil snapshot leaves the stored value in
// place. Unlike the read path, write failures surface to the caller since
// the medium can genuinely reject a write.
func (p *Persistent) SetCurrent(ctx context.Context, snap *timepoint.Snapshot) error {
	if p == nil || snap == nil {
		return nil
	}
	if p.store == nil {
		return fmt.Errorf("preference store is required")
	}
	if err := p.store.SetMapping(ctx, StableTimeKey, snap.Mapping()); err != nil {
		return fmt.Errorf("store stable time: %w", err)
	}
	return nil
}
