package pds

import (
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/smartcontractkit/chainlink-data-streams/budget"
	"github.com/smartcontractkit/chainlink-data-streams/events"
	"github.com/smartcontractkit/chainlink-data-streams/queries"
)

// DefaultCapacity is the default per-epoch filter capacity used by New
// when WithDefaultCapacity is not supplied, the ε=3.0 figure Cookie
// Monster's evaluation uses as its baseline per-device budget.
var DefaultCapacity = budget.Finite(3.0)

// Option configures a Service at construction time.
type Option[ID events.EpochID, E events.Event[ID], R queries.Report] func(*Service[ID, E, R])

// WithDefaultCapacity sets the capacity newly-created epoch filters start
// with.
func WithDefaultCapacity[ID events.EpochID, E events.Event[ID], R queries.Report](capacity budget.Budget) Option[ID, E, R] {
	return func(s *Service[ID, E, R]) {
		s.defaultCapacity = capacity
	}
}

// WithLogger sets the logger the Service reports decisions to. Defaults to
// a no-op logger.
func WithLogger[ID events.EpochID, E events.Event[ID], R queries.Report](lggr logger.Logger) Option[ID, E, R] {
	return func(s *Service[ID, E, R]) {
		s.lggr = lggr
	}
}

// WithEpsilonTolerance overrides the near-zero noise-scale threshold used
// to detect non-private ("infinite budget") requests — a debug/noiseless
// escape hatch, not a privacy parameter itself. Defaults to the IEEE-754
// float64 machine epsilon.
func WithEpsilonTolerance[ID events.EpochID, E events.Event[ID], R queries.Report](tolerance float64) Option[ID, E, R] {
	return func(s *Service[ID, E, R]) {
		s.epsilonTolerance = tolerance
	}
}
