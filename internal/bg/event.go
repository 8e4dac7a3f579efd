package bg

import "time"

// Event is an immutable record of a single stimulus: the graph opens one
// Event per top-level action and stamps it onto every resource the action
// (transitively) updates.
type Event struct {
	sequence  uint64
	timestamp time.Time
	impulse   string
}

// UnknownPast is the initial "last update" stamp of every newly created
// resource. Its sequence is 0, lower than any real event's sequence.
var UnknownPast = Event{}

// Sequence is the monotonically increasing, 1-based event number. UnknownPast
// reports 0.
func (e Event) Sequence() uint64 { return e.sequence }

// Timestamp is when the event's action block began running.
func (e Event) Timestamp() time.Time { return e.timestamp }

// Impulse is the optional human-readable label supplied to Graph.Action.
func (e Event) Impulse() string { return e.impulse }

// HappenedSince reports whether this event's sequence is strictly greater
// than since, i.e. whether this event occurred after the event with that
// sequence number.
func (e Event) HappenedSince(since uint64) bool {
	return e.sequence > since
}

// IsUnknownPast reports whether e is the zero/unknown-past event.
func (e Event) IsUnknownPast() bool { return e.sequence == 0 }
