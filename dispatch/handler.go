package dispatch

import "reflect"

// A Handler reacts to events of the types it is registered for. The event is
// passed by value; handlers must not retain references into it beyond the
// call.
type Handler interface {
	Handle(evt Event)
}

// A Keyer is a Handler that supplies its own identity key. Two registrations
// at the same priority compare equal when their keys are equal, so handlers
// of the same concrete type that must coexist under one event type implement
// Keyer to disambiguate themselves.
type Keyer interface {
	HandlerKey() string
}

// HandlerInfo describes one registered handler, for inspection.
type HandlerInfo struct {
	Priority int    `json:"priority"`
	Key      string `json:"key"`
}

// handlerKey derives the identity key that orders handlers of equal priority.
// The key is the handler's concrete type name unless the handler provides one
// itself. Type names are fixed within a build, which makes the resulting
// order deterministic across runs of that build.
func handlerKey(h Handler) string {
	if k, ok := h.(Keyer); ok {
		return k.HandlerKey()
	}

	return reflect.TypeOf(h).String()
}
