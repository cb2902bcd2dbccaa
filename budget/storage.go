package budget

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// ErrFilterNotInitialized is returned by Storage methods when no filter
// exists for the requested id. Engine callers are expected to create
// filters lazily (pds.Service does) so this should only surface for
// genuinely unknown ids.
var ErrFilterNotInitialized = errors.New("filter not initialized")

// FilterID identifies a filter. Filter identity is 1:1 with epoch id, the
// way columbia/pdslib keys its HashMapFilterStorage; the storage interface
// is generic over any comparable id so callers are not tied to a particular
// epoch id type.
type FilterID interface {
	comparable
}

// Storage is a keyed collection of Filters, analogous to pdslib's
// FilterStorage trait. The reference implementation, HashMapStorage, is
// in-memory; a concrete deployment backs this with a durable store (Redis,
// a KV table) that must satisfy this interface synchronously — no blocking
// I/O surfaces through the filter-check hot path.
type Storage[K FilterID] interface {
	// Create initializes a fresh filter at filter_id, replacing any
	// filter already there.
	Create(filterID K, capacity Budget) error
	// IsInitialized reports whether a filter exists at filter_id.
	IsInitialized(filterID K) (bool, error)
	// CheckAndConsume looks up the filter at filter_id and delegates to
	// Filter.CheckAndConsume. Returns ErrFilterNotInitialized if absent.
	CheckAndConsume(filterID K, requested Budget) (FilterStatus, error)
	// GetRemaining returns a copy of the filter's remaining budget.
	// Returns ErrFilterNotInitialized if absent.
	GetRemaining(filterID K) (Budget, error)
}

// HashMapStorage is the in-memory reference Storage implementation backed
// by a Go map, analogous to HashMapFilterStorage in the original pdslib.
// It has no invariant across filters; each id's filter is independent.
type HashMapStorage[K FilterID] struct {
	filters map[K]*Filter
	lggr    logger.Logger
}

// NewHashMapStorage constructs an empty in-memory filter storage. A nil
// logger is replaced with a no-op logger.
func NewHashMapStorage[K FilterID](lggr logger.Logger) *HashMapStorage[K] {
	if lggr == nil {
		lggr = logger.Nop()
	}
	return &HashMapStorage[K]{
		filters: make(map[K]*Filter),
		lggr:    lggr.Named("budget.HashMapStorage"),
	}
}

func (s *HashMapStorage[K]) Create(filterID K, capacity Budget) error {
	s.filters[filterID] = NewFilter(capacity)
	return nil
}

func (s *HashMapStorage[K]) IsInitialized(filterID K) (bool, error) {
	_, ok := s.filters[filterID]
	return ok, nil
}

func (s *HashMapStorage[K]) CheckAndConsume(filterID K, requested Budget) (FilterStatus, error) {
	f, ok := s.filters[filterID]
	if !ok {
		return OutOfBudget, errors.Wrapf(ErrFilterNotInitialized, "check_and_consume: filter %v", filterID)
	}
	status := f.CheckAndConsume(requested)
	s.lggr.Debugw("check_and_consume",
		"filter_id", fmt.Sprintf("%v", filterID),
		"requested", requested.String(),
		"status", status.String(),
	)
	return status, nil
}

func (s *HashMapStorage[K]) GetRemaining(filterID K) (Budget, error) {
	f, ok := s.filters[filterID]
	if !ok {
		return Budget{}, errors.Wrapf(ErrFilterNotInitialized, "get_remaining: filter %v", filterID)
	}
	return f.RemainingBudget(), nil
}
