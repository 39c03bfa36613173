// Package timestore caches the most recently confirmed stable-time reading
// behind a construction-time choice of storage medium.
package timestore

import (
	"context"

	"github.com/louisbranch/stabletime/internal/timepoint"
)

// StableTimeKey is the slot every persistent backend reads and writes,
// regardless of which suite partition it is bound to. Cooperating processes
// find the cached reading by this name.
const StableTimeKey = "stable_time"

// Backend reads and writes the single cached stable-time snapshot.
//
// Both implementations share one rule: SetCurrent with a nil snapshot is a
// no-op and never clears a previously stored value. The only way Current
// reports absence is when nothing was ever stored, or when the stored
// mapping fails to decode.
type Backend interface {
	// Current returns the cached snapshot, reporting false when absent.
	Current(ctx context.Context) (timepoint.Snapshot, bool)
	// SetCurrent replaces the cached snapshot. A nil snapshot is ignored.
	SetCurrent(ctx context.Context, snap *timepoint.Snapshot) error
}
