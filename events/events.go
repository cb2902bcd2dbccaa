// Package events implements the event-storage side of the privacy data
// service: the keyed collection of per-epoch events that report requests
// draw from, and the two concrete event types shipped as references
// (SimpleEvent and AraEvent).
package events

// EpochID identifies the time window an event belongs to and, in turn, the
// filter that tracks its privacy budget — the same epoch-keyed model
// columbia/pdslib uses to bound attribution to a device's recent history.
// The default concrete id used by the reference event types is a plain
// int; any comparable type works.
type EpochID interface {
	comparable
}

// Event is the minimal shape the engine needs: something that knows which
// epoch it belongs to. Concrete event types carry arbitrary additional
// fields opaque to the engine.
type Event[ID EpochID] interface {
	EpochID() ID
}

// RelevantEventSelector is a pure predicate over events, carried by a
// report request and passed down to event storage so only relevant events
// are ever materialized.
type RelevantEventSelector[E any] interface {
	IsRelevant(event E) bool
}

// SelectorFunc adapts a plain function to RelevantEventSelector, for
// selectors with no extra state beyond the predicate itself.
type SelectorFunc[E any] func(event E) bool

func (f SelectorFunc[E]) IsRelevant(event E) bool {
	return f(event)
}
