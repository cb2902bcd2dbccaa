package events

// SimpleEvent is a barebones event type for tests and demos. See AraEvent
// for a richer, ARA-style event.
type SimpleEvent struct {
	ID          int
	EpochNumber int
	EventKey    int
}

func (e SimpleEvent) EpochID() int {
	return e.EpochNumber
}
