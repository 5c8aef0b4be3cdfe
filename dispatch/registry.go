package dispatch

import "sort"

// handlerEntry is one member of a handler set.
type handlerEntry struct {
	priority int
	key      string
	handler  Handler
}

// before defines the strict total order over set members: higher priority
// first, then ascending identity key.
func (e handlerEntry) before(other handlerEntry) bool {
	if e.priority != other.priority {
		return e.priority > other.priority
	}

	return e.key < other.key
}

func (e handlerEntry) sameMember(other handlerEntry) bool {
	return e.priority == other.priority && e.key == other.key
}

// A handlerSet holds the handlers registered for one event type, sorted by
// the strict order above. Two entries that compare equal are the same member,
// so inserting a duplicate is a no-op rather than a second registration.
type handlerSet struct {
	entries []handlerEntry
}

// insert places the entry at its ordered position. It reports whether the set
// changed; false means an equal member was already present.
func (s *handlerSet) insert(e handlerEntry) bool {
	i := s.searchFor(e)

	if i < len(s.entries) && s.entries[i].sameMember(e) {
		return false
	}

	s.entries = append(s.entries, handlerEntry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e

	return true
}

// remove deletes the member comparing equal to e. It reports whether a member
// was removed.
func (s *handlerSet) remove(e handlerEntry) bool {
	i := s.searchFor(e)

	if i >= len(s.entries) || !s.entries[i].sameMember(e) {
		return false
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)

	return true
}

// snapshot copies the current members in order. Dispatching iterates over a
// snapshot so that removals during a drain only affect later events.
func (s *handlerSet) snapshot() []handlerEntry {
	c := make([]handlerEntry, len(s.entries))
	copy(c, s.entries)
	return c
}

func (s *handlerSet) len() int {
	return len(s.entries)
}

// searchFor returns the ordered position of e within the set.
func (s *handlerSet) searchFor(e handlerEntry) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return !s.entries[i].before(e)
	})
}
