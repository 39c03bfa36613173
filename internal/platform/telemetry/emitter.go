// Package telemetry records diagnostic events emitted by stabletime
// components.
//
// The storage layer deliberately swallows resolution and decode failures on
// its read path; this package is the observability valve for those silent
// recoveries. Events are appended to a pluggable sink so deployments can
// route them to logs now and to OpenTelemetry later without touching the
// storage contract.
package telemetry

import (
	"context"
	"log"
	"time"
)

// Event is one diagnostic occurrence.
type Event struct {
	Name      string
	Timestamp time.Time
	Detail    map[string]string
}

// Sink receives emitted events.
type Sink interface {
	AppendEvent(ctx context.Context, evt Event) error
}

// Emitter stamps events with a timestamp and forwards them to a sink. A nil
// emitter or a nil sink silently drops events so callers never guard emits.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter builds an emitter over the given sink. A nil clock defaults to
// time.Now.
func NewEmitter(sink Sink, clock func() time.Time) *Emitter {
	return &Emitter{sink: sink, clock: clock}
}

// Emit records one event. Events without a timestamp are stamped with the
// emitter's clock.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.sink == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		clock := e.clock
		if clock == nil {
			clock = time.Now
		}
		evt.Timestamp = clock()
	}
	return e.sink.AppendEvent(ctx, evt)
}

// LogSink writes events to the process log.
type LogSink struct{}

// AppendEvent logs one event.
func (LogSink) AppendEvent(_ context.Context, evt Event) error {
	if len(evt.Detail) == 0 {
		log.Printf("telemetry %s at %s", evt.Name, evt.Timestamp.UTC().Format(time.RFC3339))
		return nil
	}
	log.Printf("telemetry %s at %s: %v", evt.Name, evt.Timestamp.UTC().Format(time.RFC3339), evt.Detail)
	return nil
}
