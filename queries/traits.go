// Package queries implements the report-request abstraction: the
// per-request epoch range, relevance selector, noise scale, report
// computation, and sensitivity calculators that pds.Service drives, plus
// two concrete instantiations (histogram and last-touch).
package queries

import (
	"github.com/smartcontractkit/chainlink-data-streams/budget"
	"github.com/smartcontractkit/chainlink-data-streams/events"
	"github.com/smartcontractkit/chainlink-data-streams/mechanisms"
)

// Report is the value a request computes from a set of epoch events. It
// must define a null/default value (Go's zero value serves this role) so
// devices with no budget left, or that hit an internal error, still emit
// something, keeping them indistinguishable from devices that had data.
type Report any

// Request is the generic report-request interface pds.Service drives. It
// is parameterized over the epoch id type, the event type, and the report
// type so a single engine implementation (pds.Service) can serve any
// concrete request that satisfies this contract — the Go analogue of
// pdslib's HistogramRequest/LastTouchHistogramRequest trait family,
// instantiated per concrete request type rather than via a blanket impl.
type Request[ID events.EpochID, E events.Event[ID], R Report] interface {
	// EpochIDs returns the requested epoch ids, in the order attribution
	// should run (by convention, most recent first).
	EpochIDs() []ID

	// RelevanceSelector returns the selector used to fetch only the
	// events this request cares about from event storage.
	RelevanceSelector() events.RelevantEventSelector[E]

	// NoiseScale returns the Laplace scale the aggregator will apply to
	// the emitted report.
	NoiseScale() mechanisms.NoiseScale

	// ComputeReport is a total function from a per-epoch event map to a
	// report; the empty map must compute the null report.
	ComputeReport(perEpoch map[ID]events.EpochEvents[E]) R

	// SingleEpochSensitivity is the sensitivity of report under norm,
	// used when only one epoch has relevant events.
	SingleEpochSensitivity(report R, norm mechanisms.NormType) float64

	// GlobalSensitivity is the worst-case change in the emitted report
	// across neighbouring event sets, used when two or more epochs have
	// relevant events.
	GlobalSensitivity() float64
}

// PassiveLossRequest is a bulk budget debit independent of any event
// retrieval: a list of epoch ids and a single budget to consume from each.
type PassiveLossRequest[ID events.EpochID] struct {
	EpochIDs      []ID
	PrivacyBudget budget.Budget
}
