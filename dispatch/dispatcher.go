package dispatch

import (
	"errors"
	"sort"
)

// ErrDrainBudgetExceeded is returned by ProcessEvents when the dispatcher has
// a drain budget and the budget was spent with events still pending.
var ErrDrainBudgetExceeded = errors.New("drain budget exceeded")

// A Dispatcher routes pushed events to the handlers registered for their
// types.
//
// The dispatcher is single-threaded and cooperative. All mutations and the
// drain are expected to run on one goroutine; callers that need concurrent
// access must serialize it themselves. ProcessEvents must not be called from
// within a handler it is currently running. PushEvent from within a handler
// is the supported re-entrancy point: events pushed during a drain are
// drained before ProcessEvents returns.
type Dispatcher struct {
	HookableBase

	handlers    map[TypeID]*handlerSet
	queue       EventQueue
	drainBudget int
}

// NewDispatcher creates a Dispatcher with an empty registry and queue.
func NewDispatcher() *Dispatcher {
	d := new(Dispatcher)

	d.handlers = make(map[TypeID]*handlerSet)
	d.queue = NewEventQueue()

	return d
}

// WithDrainBudget limits one ProcessEvents call to dispatching at most n
// events. The budget is the only guard against handlers that enqueue new
// events without bound; with the default of 0 the drain runs until the queue
// is empty, and a self-feeding handler keeps it from ever returning.
func (d *Dispatcher) WithDrainBudget(n int) *Dispatcher {
	d.drainBudget = n
	return d
}

// WithQueue replaces the pending-event queue. Useful for substituting the
// InsertionQueue or an instrumented queue.
func (d *Dispatcher) WithQueue(q EventQueue) *Dispatcher {
	d.queue = q
	return d
}

// AddHandler registers a handler for an event type with the given invocation
// priority. Within one type, handlers run in descending priority order;
// equal priorities are ordered by the handler identity key (see Keyer).
// Adding a handler whose priority and key match an existing member is a
// no-op: the set already contains it.
func (d *Dispatcher) AddHandler(t TypeID, priority int, h Handler) {
	set, found := d.handlers[t]
	if !found {
		set = &handlerSet{}
		d.handlers[t] = set
	}

	set.insert(handlerEntry{
		priority: priority,
		key:      handlerKey(h),
		handler:  h,
	})
}

// AddHandlerByName registers a handler for a named event type.
func (d *Dispatcher) AddHandlerByName(name string, priority int, h Handler) {
	d.AddHandler(TypeIDOf(name), priority, h)
}

// RemoveHandler removes the registration matching the handler's priority and
// identity key. Removing from an unknown type, or removing a handler that is
// not registered, is a no-op.
func (d *Dispatcher) RemoveHandler(t TypeID, priority int, h Handler) {
	set, found := d.handlers[t]
	if !found {
		return
	}

	set.remove(handlerEntry{priority: priority, key: handlerKey(h)})
}

// RemoveHandlerByName removes a handler from a named event type.
func (d *Dispatcher) RemoveHandlerByName(name string, priority int, h Handler) {
	d.RemoveHandler(TypeIDOf(name), priority, h)
}

// PushEvent adds an event to the pending queue. It never fails. The queue
// owns any attached payload until the event is dispatched or dropped.
func (d *Dispatcher) PushEvent(evt Event) {
	d.queue.Push(evt)
}

// ProcessEvents drains the queue to empty. Each iteration removes the
// highest-priority pending event and invokes every handler in its type's set,
// in set order, or fires the dropped hook when no set exists. Emptiness is
// re-checked every iteration, so events pushed by handlers along the way are
// drained within the same call.
func (d *Dispatcher) ProcessEvents() error {
	dispatched := 0

	for d.queue.Len() > 0 {
		if d.drainBudget > 0 && dispatched >= d.drainBudget {
			return ErrDrainBudgetExceeded
		}

		evt := d.queue.Pop()
		d.dispatch(evt)
		dispatched++
	}

	return nil
}

// dispatch invokes all handlers for one event. The handler set is snapshotted
// first so that removals performed by handlers take effect from the next
// event on.
func (d *Dispatcher) dispatch(evt Event) {
	set, found := d.handlers[evt.Type]
	if !found {
		d.InvokeHook(HookCtx{
			Domain: d,
			Pos:    HookPosEventDropped,
			Item:   evt,
		})
		return
	}

	for _, entry := range set.snapshot() {
		d.InvokeHook(HookCtx{
			Domain: d,
			Pos:    HookPosBeforeHandler,
			Item:   evt,
			Detail: HandlerInfo{Priority: entry.priority, Key: entry.key},
		})

		entry.handler.Handle(evt)
	}

	d.InvokeHook(HookCtx{
		Domain: d,
		Pos:    HookPosAfterEvent,
		Item:   evt,
	})
}

// QueueLen returns the number of pending events.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// RegisteredTypes returns the identifiers that currently have a handler set,
// in ascending order.
func (d *Dispatcher) RegisteredTypes() []TypeID {
	types := make([]TypeID, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// HandlerCount returns the number of handlers registered for a type.
func (d *Dispatcher) HandlerCount(t TypeID) int {
	set, found := d.handlers[t]
	if !found {
		return 0
	}

	return set.len()
}

// HandlerInfos describes the handlers registered for a type, in invocation
// order.
func (d *Dispatcher) HandlerInfos(t TypeID) []HandlerInfo {
	set, found := d.handlers[t]
	if !found {
		return nil
	}

	infos := make([]HandlerInfo, 0, set.len())
	for _, e := range set.snapshot() {
		infos = append(infos, HandlerInfo{Priority: e.priority, Key: e.key})
	}

	return infos
}
