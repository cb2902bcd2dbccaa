package queries

import (
	"github.com/shopspring/decimal"

	"github.com/smartcontractkit/chainlink-data-streams/events"
	"github.com/smartcontractkit/chainlink-data-streams/mechanisms"
)

// LastTouchBin is the single attributed bin a LastTouch request can
// produce. A nil *LastTouchBin is the null report: either a single
// (bucket_key, V) pair, or nothing.
type LastTouchBin[BK comparable] struct {
	Key   BK
	Value decimal.Decimal
}

// LastTouch implements last-touch attribution, the model ARA's
// event-level and conversion reports use: the first non-empty epoch
// (scanning most-recent-first) contributes its last relevant event's
// bucket key, attributed the fixed value V.
type LastTouch[E events.Event[int], BK comparable] struct {
	EpochStart, EpochEnd int
	AttributableValue    decimal.Decimal
	Laplace              float64
	Selector             events.RelevantEventSelector[E]
	BucketKeyFn          func(event E) BK
}

var _ Request[int, events.SimpleEvent, *LastTouchBin[int]] = (*LastTouch[events.SimpleEvent, int])(nil)

// EpochIDs returns the requested epochs, most recent (EpochEnd) first.
func (l *LastTouch[E, BK]) EpochIDs() []int {
	ids := make([]int, 0, l.EpochEnd-l.EpochStart+1)
	for epoch := l.EpochEnd; epoch >= l.EpochStart; epoch-- {
		ids = append(ids, epoch)
	}
	return ids
}

func (l *LastTouch[E, BK]) RelevanceSelector() events.RelevantEventSelector[E] {
	return l.Selector
}

func (l *LastTouch[E, BK]) NoiseScale() mechanisms.NoiseScale {
	return mechanisms.Laplace(l.Laplace)
}

// ComputeReport scans epochs most-recent-first (the order EpochIDs
// returns) and returns the last event of the first non-empty epoch it
// finds. Events within an epoch are assumed stored in occurrence order, so
// the last element is the most recent relevant impression.
func (l *LastTouch[E, BK]) ComputeReport(perEpoch map[int]events.EpochEvents[E]) *LastTouchBin[BK] {
	for _, epoch := range l.EpochIDs() {
		relevant, ok := perEpoch[epoch]
		if !ok || len(relevant) == 0 {
			continue
		}
		last := relevant[len(relevant)-1]
		return &LastTouchBin[BK]{
			Key:   l.BucketKeyFn(last),
			Value: l.AttributableValue,
		}
	}
	return nil
}

// SingleEpochSensitivity is |V| if the report is present, else 0. L1 and
// L2 coincide since the report has at most one bin.
func (l *LastTouch[E, BK]) SingleEpochSensitivity(report *LastTouchBin[BK], _ mechanisms.NormType) float64 {
	if report == nil {
		return 0
	}
	f, _ := report.Value.Abs().Float64()
	return f
}

// GlobalSensitivity is V itself: the single-bin case does not incur the
// factor-2 penalty the multi-bin Histogram request does.
func (l *LastTouch[E, BK]) GlobalSensitivity() float64 {
	f, _ := l.AttributableValue.Float64()
	return f
}

// NewSimpleLastTouch builds a LastTouch request over events.SimpleEvent,
// bucketing by its EventKey field — the concrete demo/test instantiation
// from the original pdslib's SimpleLastTouchHistogramRequest.
func NewSimpleLastTouch(epochStart, epochEnd int, attributableValue decimal.Decimal, laplace float64, isRelevant func(events.SimpleEvent) bool) *LastTouch[events.SimpleEvent, int] {
	return &LastTouch[events.SimpleEvent, int]{
		EpochStart:        epochStart,
		EpochEnd:          epochEnd,
		AttributableValue: attributableValue,
		Laplace:           laplace,
		Selector:          events.SelectorFunc[events.SimpleEvent](isRelevant),
		BucketKeyFn: func(event events.SimpleEvent) int {
			return event.EventKey
		},
	}
}
