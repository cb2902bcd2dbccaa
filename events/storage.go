package events

import (
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// EpochEvents is the ordered sequence of events belonging to one epoch, in
// insertion order. Order matters: last-touch attribution looks at the last
// element, and the histogram contribution cap stops at the first event
// that would exceed it.
type EpochEvents[E any] []E

// Storage is a keyed mapping from epoch id to an ordered sequence of
// events, analogous to pdslib's EventStorage trait. The reference
// implementation, HashMapStorage, is in-memory; a concrete deployment backs
// this with an external store that must satisfy this interface
// synchronously, the same way Storage in the budget package does for
// filters.
type Storage[ID EpochID, E Event[ID]] interface {
	// Add appends event to the sequence for its epoch, creating the
	// sequence if this is the epoch's first event.
	Add(event E) error
	// GetRelevant returns nil, nil if the epoch has never received an
	// event. Otherwise it returns the subsequence of events for which
	// selector.IsRelevant holds, preserving insertion order; this may be
	// an empty, non-nil slice if the epoch existed but had no relevant
	// events.
	GetRelevant(epochID ID, selector RelevantEventSelector[E]) (EpochEvents[E], error)
}

// HashMapStorage is the in-memory reference Storage implementation,
// analogous to HashMapEventStorage in the original pdslib. Events are
// returned by value (the slice is copied on read) so callers may hold the
// result while storage continues to mutate.
type HashMapStorage[ID EpochID, E Event[ID]] struct {
	epochs map[ID][]E
	lggr   logger.Logger
}

// NewHashMapStorage constructs an empty in-memory event storage. A nil
// logger is replaced with a no-op logger.
func NewHashMapStorage[ID EpochID, E Event[ID]](lggr logger.Logger) *HashMapStorage[ID, E] {
	if lggr == nil {
		lggr = logger.Nop()
	}
	return &HashMapStorage[ID, E]{
		epochs: make(map[ID][]E),
		lggr:   lggr.Named("events.HashMapStorage"),
	}
}

func (s *HashMapStorage[ID, E]) Add(event E) error {
	epochID := event.EpochID()
	s.epochs[epochID] = append(s.epochs[epochID], event)
	s.lggr.Debugw("add", "epoch_id", epochID)
	return nil
}

func (s *HashMapStorage[ID, E]) GetRelevant(epochID ID, selector RelevantEventSelector[E]) (EpochEvents[E], error) {
	stored, ok := s.epochs[epochID]
	if !ok {
		return nil, nil
	}

	relevant := make(EpochEvents[E], 0, len(stored))
	for _, event := range stored {
		if selector.IsRelevant(event) {
			relevant = append(relevant, event)
		}
	}
	return relevant, nil
}
