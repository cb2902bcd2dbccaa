package queries

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/smartcontractkit/chainlink-data-streams/events"
	"github.com/smartcontractkit/chainlink-data-streams/mechanisms"
)

// EventValue pairs an event with the value a Histogram request attributes
// to it, in the order attribution should be attempted. Order matters:
// later pairs may be dropped once the running total crosses the
// attribution cap.
type EventValue[E any] struct {
	Event E
	Value decimal.Decimal
}

// HistogramReport is the report a Histogram request computes: a sparse set
// of bucket-key -> accumulated-value bins. The zero value (nil BinValues)
// is the null report pds.Service returns on a filter-storage error;
// ComputeReport itself returns an empty, non-nil bin map when no event is
// attributed (empty request, or every epoch dropped).
//
// Bin values use decimal.Decimal rather than float64 so the running-total
// cap check in ComputeReport, and the L1/L2 sensitivity sums derived from
// it, don't accumulate floating-point drift across many small
// contributions — the same reasoning the teacher applies to money-like
// stream values (llo.Quote, ToDecimal).
type HistogramReport[BK comparable] struct {
	BinValues map[BK]decimal.Decimal
}

// L1 returns the sum of all bin values.
func (r HistogramReport[BK]) L1() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range r.BinValues {
		sum = sum.Add(v)
	}
	return sum
}

// Histogram is the generic partial-attribution-with-cap report request:
// the same attribution-cap mechanism Chrome's Private Aggregation API and
// ARA summary reports use to bound a single source's contribution across a
// reporting window. BucketKeyFn maps an event to the bin it contributes
// to; ValuesFn attributes a value to each relevant event, in the order
// attribution should run.
type Histogram[E events.Event[int], BK comparable] struct {
	EpochStart, EpochEnd int
	// AttributionCap is the maximum L1 norm the emitted histogram may
	// reach (C in Cookie Monster's contribution-bounding scheme).
	AttributionCap decimal.Decimal
	Laplace        float64
	Selector       events.RelevantEventSelector[E]
	BucketKeyFn    func(event E) BK
	ValuesFn       func(perEpoch map[int]events.EpochEvents[E]) []EventValue[E]
}

var _ Request[int, events.SimpleEvent, HistogramReport[int]] = (*Histogram[events.SimpleEvent, int])(nil)

// EpochIDs returns the requested epochs, most recent (EpochEnd) first.
func (h *Histogram[E, BK]) EpochIDs() []int {
	ids := make([]int, 0, h.EpochEnd-h.EpochStart+1)
	for epoch := h.EpochEnd; epoch >= h.EpochStart; epoch-- {
		ids = append(ids, epoch)
	}
	return ids
}

func (h *Histogram[E, BK]) RelevanceSelector() events.RelevantEventSelector[E] {
	return h.Selector
}

func (h *Histogram[E, BK]) NoiseScale() mechanisms.NoiseScale {
	return mechanisms.Laplace(h.Laplace)
}

// ComputeReport accumulates (event, value) pairs in the order ValuesFn
// produces them. The offending event that would push the running total
// over the cap contributes nothing; every strictly earlier event
// contributes in full.
func (h *Histogram[E, BK]) ComputeReport(perEpoch map[int]events.EpochEvents[E]) HistogramReport[BK] {
	binValues := make(map[BK]decimal.Decimal)
	total := decimal.Zero

	for _, ev := range h.ValuesFn(perEpoch) {
		candidate := total.Add(ev.Value)
		if candidate.GreaterThan(h.AttributionCap) {
			return HistogramReport[BK]{BinValues: binValues}
		}
		total = candidate
		key := h.BucketKeyFn(ev.Event)
		binValues[key] = binValues[key].Add(ev.Value)
	}

	return HistogramReport[BK]{BinValues: binValues}
}

func (h *Histogram[E, BK]) SingleEpochSensitivity(report HistogramReport[BK], norm mechanisms.NormType) float64 {
	switch norm {
	case mechanisms.L2:
		sumSquares := decimal.Zero
		for _, v := range report.BinValues {
			sumSquares = sumSquares.Add(v.Mul(v))
		}
		f, _ := sumSquares.Float64()
		return math.Sqrt(f)
	default:
		f, _ := report.L1().Float64()
		return f
	}
}

// GlobalSensitivity is 2*C: the worst-case change in the emitted histogram
// across neighbouring event sets when the codomain has dimension >= 2, the
// standard L1-sensitivity doubling for a bounded-contribution histogram
// query.
func (h *Histogram[E, BK]) GlobalSensitivity() float64 {
	f, _ := h.AttributionCap.Float64()
	return 2 * f
}
