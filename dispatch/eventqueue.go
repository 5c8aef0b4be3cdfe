package dispatch

import (
	"container/heap"
	"container/list"
	"sync"
)

// EventQueue is a queue of pending events ordered by priority level, highest
// first. Events at the same priority level leave the queue in the order they
// entered it.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// EventQueueImpl provides a thread safe event queue backed by a heap.
type EventQueueImpl struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates and returns a newly created EventQueue.
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make(eventHeap, 0)
	heap.Init(&q.events)
	return q
}

// Push adds an event to the event queue.
func (q *EventQueueImpl) Push(evt Event) {
	q.Lock()
	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.nextSeq})
	q.nextSeq++
	q.Unlock()
}

// Pop returns the highest-priority pending event, removing it from the queue.
func (q *EventQueueImpl) Pop() Event {
	q.Lock()
	e := heap.Pop(&q.events).(queuedEvent)
	q.Unlock()
	return e.evt
}

// Len returns the number of events in the queue.
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()
	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue.
func (q *EventQueueImpl) Peek() Event {
	q.Lock()
	evt := q.events[0].evt
	q.Unlock()
	return evt
}

// queuedEvent tags an event with its arrival sequence so that equal priority
// levels drain first-in first-out.
type queuedEvent struct {
	evt Event
	seq uint64
}

type eventHeap []queuedEvent

// Len returns the length of the event queue.
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two pending events. Less returns true if
// the i-th event leaves the queue before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	if h[i].evt.PriorityLevel != h[j].evt.PriorityLevel {
		return h[i].evt.PriorityLevel > h[j].evt.PriorityLevel
	}

	return h[i].seq < h[j].seq
}

// Swap changes the position of two events in the event queue.
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue.
func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(queuedEvent))
}

// Pop removes and returns the next event to dispatch.
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	event := old[n-1]
	*h = old[0 : n-1]
	return event
}

// InsertionQueue is a queue that is based on insertion sort. It keeps the
// same ordering policy as EventQueueImpl.
type InsertionQueue struct {
	lock sync.RWMutex
	l    *list.List
}

// NewInsertionQueue returns a new InsertionQueue.
func NewInsertionQueue() *InsertionQueue {
	q := new(InsertionQueue)
	q.l = list.New()
	return q
}

// Push adds an event to the event queue. New events go behind all events of
// the same or higher priority level.
func (q *InsertionQueue) Push(evt Event) {
	var ele *list.Element

	q.lock.RLock()
	for ele = q.l.Front(); ele != nil; ele = ele.Next() {
		if ele.Value.(Event).PriorityLevel < evt.PriorityLevel {
			break
		}
	}
	q.lock.RUnlock()

	q.lock.Lock()
	if ele != nil {
		q.l.InsertBefore(evt, ele)
	} else {
		q.l.PushBack(evt)
	}
	q.lock.Unlock()
}

// Pop returns the event with the highest priority level, and removes it from
// the queue.
func (q *InsertionQueue) Pop() Event {
	q.lock.Lock()
	evt := q.l.Remove(q.l.Front())
	q.lock.Unlock()
	return evt.(Event)
}

// Len return the number of events in the queue.
func (q *InsertionQueue) Len() int {
	q.lock.RLock()
	l := q.l.Len()
	q.lock.RUnlock()
	return l
}

// Peek returns the event at the front of the queue without removing it from
// the queue.
func (q *InsertionQueue) Peek() Event {
	q.lock.RLock()
	evt := q.l.Front().Value.(Event)
	q.lock.RUnlock()
	return evt
}
