package events

import "github.com/google/uuid"

// AraEvent is a source event for ARA-style callers such as Chromium. It
// mirrors the fields from the Attribution Reporting API's source
// registration: https://github.com/WICG/attribution-reporting-api/blob/main/EVENT.md
//
// The original pdslib reference type keys events with a bare usize; here
// the id is a uuid.UUID, the way a production event-ingestion pipeline
// would assign collision-resistant ids to externally-observed events
// instead of a process-local counter.
type AraEvent struct {
	ID                  uuid.UUID
	EpochNumber         int
	AggregatableSources map[string]int
}

func (e AraEvent) EpochID() int {
	return e.EpochNumber
}
