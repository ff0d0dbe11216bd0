package timing

import "time"

// EventKind discriminates registry notifications.
type EventKind uint8

const (
	// EventUnitSeen fires the first time a canonical key is observed.
	EventUnitSeen EventKind = iota + 1
	// EventUnitDone fires on every completed start/complete pair.
	EventUnitDone
	// EventSlowUnit fires when a completed duration exceeds the slow
	// threshold.
	EventSlowUnit
	// EventProgress carries a progress snapshot at the reporting cadence.
	EventProgress
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	switch k {
	case EventUnitSeen:
		return "seen"
	case EventUnitDone:
		return "done"
	case EventSlowUnit:
		return "slow"
	case EventProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Event reports registry activity to a sink. Unit is the canonical key
// (empty for progress events); Display is a compact name for human
// output; Snapshot is populated for EventProgress only.
type Event struct {
	Kind     EventKind
	Unit     string
	Display  string
	Duration time.Duration
	Snapshot Snapshot
}

// Sink consumes registry events. Implementations must not call back
// into the emitting Registry.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}
