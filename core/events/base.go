package events

import "time"

// Kind identifies an event type within a receiver-facing namespace, e.g.
// "session_state.changed".
type Kind string

// Event is the contract every orchestration event satisfies.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the fields shared by all events and is embedded by the
// concrete event types in this package.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
