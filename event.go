package segment

// Event is a sealed interface representing one step in a segment's lifecycle.
// For a given segment id events arrive as EventStart, zero or more
// EventContent, then EventEnd.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
	SegmentID() string
}

// EventStart opens a segment. Kind is fixed for the segment's lifetime.
type EventStart struct {
	ID       string
	Kind     Kind
	Metadata Metadata
}

func (EventStart) event() {}

// SegmentID returns the id of the opened segment.
func (e EventStart) SegmentID() string { return e.ID }

// EventContent carries an incremental chunk of a segment's payload.
type EventContent struct {
	ID    string
	Delta string
}

func (EventContent) event() {}

// SegmentID returns the id of the segment the delta belongs to.
func (e EventContent) SegmentID() string { return e.ID }

// EventEnd closes a segment. For tool-call kinds Metadata carries the resolved
// invocation under the "name" and "arguments" keys.
type EventEnd struct {
	ID       string
	Metadata Metadata
}

func (EventEnd) event() {}

// SegmentID returns the id of the closed segment.
func (e EventEnd) SegmentID() string { return e.ID }

// Interface compliance checks.
var (
	_ Event = EventStart{}
	_ Event = EventContent{}
	_ Event = EventEnd{}
)
