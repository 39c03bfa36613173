// Package timepoint defines the confirmed stable-time reading produced by
// clock synchronization and its canonical serialized form.
package timepoint

import (
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

// Keys of the canonical serialized mapping. Cooperating processes read the
// stored value by these names, so they never change.
const (
	uptimeKey    = "uptime"
	timestampKey = "timestamp"
	offsetKey    = "offset"
)

// Snapshot is one confirmed stable-time reading.
//
// Uptime anchors the reading to the host boot session, Timestamp records the
// local wall clock at capture, and Offset is the correction that turns the
// local clock into the reference clock. All values are seconds.
type Snapshot struct {
	Uptime    float64
	Timestamp float64
	Offset    float64
}

// New builds a snapshot from raw second readings.
func New(uptime, timestamp, offset float64) Snapshot {
	return Snapshot{Uptime: uptime, Timestamp: timestamp, Offset: offset}
}

// Capture records a stable-time reading from the local clock, carrying the
// given reference offset.
func Capture(offset float64) (Snapshot, error) {
	uptime, err := host.Uptime()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read system uptime: %w", err)
	}
	return Snapshot{
		Uptime:    float64(uptime),
		Timestamp: unixSeconds(time.Now()),
		Offset:    offset,
	}, nil
}

// Mapping returns the canonical serialized form of the snapshot. It always
// succeeds and always emits exactly the uptime, timestamp, and offset keys.
func (s Snapshot) Mapping() map[string]float64 {
	return map[string]float64{
		uptimeKey:    s.Uptime,
		timestampKey: s.Timestamp,
		offsetKey:    s.Offset,
	}
}

// FromMapping rebuilds a snapshot from its serialized form. It reports false
// when a required key is missing or holds a value no real reading can have;
// callers treat that as "no snapshot", never as an error. Extra keys are
// ignored.
func FromMapping(values map[string]float64) (Snapshot, bool) {
	uptime, ok := values[uptimeKey]
	if !ok {
		return Snapshot{}, false
	}
	timestamp, ok := values[timestampKey]
	if !ok {
		return Snapshot{}, false
	}
	offset, ok := values[offsetKey]
	if !ok {
		return Snapshot{}, false
	}
	if !finite(uptime) || !finite(timestamp) || !finite(offset) {
		return Snapshot{}, false
	}
	if uptime < 0 {
		return Snapshot{}, false
	}
	return Snapshot{Uptime: uptime, Timestamp: timestamp, Offset: offset}, true
}

// ProjectedAt returns the reference-clock Unix seconds implied by the
// snapshot once the host uptime has advanced to uptime. The projection is
// only meaningful within the boot session the snapshot was captured in.
func (s Snapshot) ProjectedAt(uptime float64) float64 {
	return s.Timestamp + s.Offset + (uptime - s.Uptime)
}

// Projected resolves ProjectedAt against the live system uptime.
func (s Snapshot) Projected() (time.Time, error) {
	uptime, err := host.Uptime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read system uptime: %w", err)
	}
	return Instant(s.ProjectedAt(float64(uptime))), nil
}

// Reference returns the reference-clock instant at capture.
func (s Snapshot) Reference() time.Time {
	return Instant(s.Timestamp + s.Offset)
}

// Local returns the local wall-clock instant at capture.
func (s Snapshot) Local() time.Time {
	return Instant(s.Timestamp)
}

// Instant converts Unix seconds to a UTC instant.
func Instant(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

func unixSeconds(value time.Time) float64 {
	return float64(value.UnixNano()) / float64(time.Second)
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
