package models

// EventType is the kind of row change carried by a RosterEvent.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// RosterEvent notifies subscribers that an athlete row changed.
// For EventDelete only Athlete.ID and Athlete.ListID are meaningful.
type RosterEvent struct {
	Type    EventType
	ListID  string
	Athlete Athlete

	// At is the Unix time in nanoseconds at which the change was written.
	At int64
}
