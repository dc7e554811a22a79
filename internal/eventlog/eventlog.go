// Package eventlog keeps a bounded, recency-evicted record of connect and
// disconnect events. Insertion order doubles as recency order: events are
// never re-read-and-promoted, so the log behaves as a ring of the most recent
// N events rather than a general LRU.
package eventlog

import (
	"container/list"

	"github.com/google/uuid"
	"github.com/wgmesh/wgmesh/pkg/mesh"
)

// DefaultCapacity bounds the log when no explicit capacity is given.
const DefaultCapacity = 1000

// Log is an id-keyed event cache with fixed capacity. Like the registry it is
// not internally locked; the coordination server's lock covers it.
type Log struct {
	capacity int
	order    *list.List // front is newest
	byID     map[uuid.UUID]*list.Element
}

// New creates a log holding at most capacity events. A non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		order:    list.New(),
		byID:     make(map[uuid.UUID]*list.Element),
	}
}

// Record inserts an event. When the log is at capacity the least recently
// inserted event is evicted silently; callers needing a durable audit trail
// must persist events before capacity is exceeded.
func (l *Log) Record(ev mesh.Event) {
	if el, ok := l.byID[ev.ID]; ok {
		el.Value = ev
		l.order.MoveToFront(el)
		return
	}
	l.byID[ev.ID] = l.order.PushFront(ev)
	for l.order.Len() > l.capacity {
		oldest := l.order.Back()
		l.order.Remove(oldest)
		delete(l.byID, oldest.Value.(mesh.Event).ID)
	}
}

// Get returns the event with the given id, if still present.
func (l *Log) Get(id uuid.UUID) (mesh.Event, bool) {
	el, ok := l.byID[id]
	if !ok {
		return mesh.Event{}, false
	}
	return el.Value.(mesh.Event), true
}

// List returns the events most-recent-first. The slice is a copy and stays
// valid after further insertions.
func (l *Log) List() []mesh.Event {
	out := make([]mesh.Event, 0, l.order.Len())
	for el := l.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(mesh.Event))
	}
	return out
}

// Len returns the number of events currently held.
func (l *Log) Len() int {
	return l.order.Len()
}
