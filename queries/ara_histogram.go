package queries

import (
	"github.com/shopspring/decimal"

	"github.com/smartcontractkit/chainlink-data-streams/events"
)

// AraRelevantEventSelector selects events using ARA-style filters. See
// https://github.com/WICG/attribution-reporting-api/blob/main/EVENT.md#optional-attribution-filters
//
// Filtering itself is not yet implemented (the original pdslib ships this
// as a TODO too) — every event is currently relevant.
type AraRelevantEventSelector struct {
	Filters map[string][]string
}

func (s AraRelevantEventSelector) IsRelevant(events.AraEvent) bool {
	return true
}

// AraHistogramRequestParams configures NewAraHistogramRequest. It mirrors
// ARA's trigger-registration fields:
// https://github.com/WICG/attribution-reporting-api/blob/main/AGGREGATE.md#attribution-trigger-registration
type AraHistogramRequestParams struct {
	StartEpoch, EndEpoch int
	// PerEventAttributableValue is the value attributed to each relevant
	// event (ARA can attribute to multiple events).
	PerEventAttributableValue decimal.Decimal
	// AttributableValue is the cap C, e.g. 2^16 in ARA, with rescaling as
	// a post-processing step outside this engine.
	AttributableValue decimal.Decimal
	NoiseScale        float64
	SourceKey         string
	TriggerKeypiece   int
	Selector          AraRelevantEventSelector
}

// NewAraHistogramRequest builds the ARA-style histogram request: each
// relevant event contributes the same per-event value to a bin keyed by
// the bitwise OR of its source keypiece and the request's trigger
// keypiece.
//
// When an event's aggregatable sources don't carry SourceKey, the source
// keypiece is treated as zero and the event is still attributed (rather
// than treated as irrelevant) — this mirrors the original pdslib's
// documented choice, see DESIGN.md.
func NewAraHistogramRequest(p AraHistogramRequestParams) *Histogram[events.AraEvent, int] {
	return &Histogram[events.AraEvent, int]{
		EpochStart:     p.StartEpoch,
		EpochEnd:       p.EndEpoch,
		AttributionCap: p.AttributableValue,
		Laplace:        p.NoiseScale,
		Selector:       p.Selector,
		BucketKeyFn: func(event events.AraEvent) int {
			sourceKeypiece := event.AggregatableSources[p.SourceKey]
			return sourceKeypiece | p.TriggerKeypiece
		},
		ValuesFn: func(perEpoch map[int]events.EpochEvents[events.AraEvent]) []EventValue[events.AraEvent] {
			values := make([]EventValue[events.AraEvent], 0)
			for epoch := p.EndEpoch; epoch >= p.StartEpoch; epoch-- {
				epochEvents, ok := perEpoch[epoch]
				if !ok {
					continue
				}
				for _, event := range epochEvents {
					values = append(values, EventValue[events.AraEvent]{
						Event: event,
						Value: p.PerEventAttributableValue,
					})
				}
			}
			return values
		},
	}
}
