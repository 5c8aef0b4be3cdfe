// Package dispatch implements an in-process event dispatch engine. Callers
// register handlers against event-type identifiers, enqueue events carrying a
// priority level, and drain the queue, invoking the matching handlers for
// each event in a well-defined order.
package dispatch

import "github.com/kestrellab/relay/hashing"

// TypeID identifies a category of event. It is derived by hashing an
// event-type name and is stable within and across runs.
type TypeID uint32

// typeNameSeed is the fixed seed for all name-to-identifier conversions.
// Changing it invalidates every identifier ever derived from a name.
const typeNameSeed uint32 = 0x9747b28c

// TypeIDOf converts a human-readable event-type name into its identifier.
func TypeIDOf(name string) TypeID {
	return TypeID(hashing.Murmur32([]byte(name), typeNameSeed))
}

// Payload is an opaque piece of data attached to an event. Implementations
// must not assume a particular handler will run, run exactly once, or run
// before another handler.
type Payload interface {
	// ToText renders the payload for diagnostics.
	ToText() string
}

// An Event describes a single occurrence. Events are values: they are copied
// into the queue on push and discarded after all matching handlers run. An
// attached payload belongs to the event that carries it.
type Event struct {
	ID string

	Type TypeID

	// PriorityLevel orders the pending-event queue only. It is independent
	// of handler priority.
	PriorityLevel int

	Payload Payload
}

// NewEvent creates an event of the given type and queue priority level.
func NewEvent(t TypeID, priorityLevel int) Event {
	return Event{
		ID:            GetIDGenerator().Generate(),
		Type:          t,
		PriorityLevel: priorityLevel,
	}
}

// NewEventByName creates an event for a named type, hashing the name first.
func NewEventByName(name string, priorityLevel int) Event {
	return NewEvent(TypeIDOf(name), priorityLevel)
}

// WithPayload returns a copy of the event that owns the given payload. Any
// previously attached payload is released with the original value.
func (e Event) WithPayload(p Payload) Event {
	e.Payload = p
	return e
}
