package dungeonecs

import (
	"fmt"
	"sort"
)

// EventType identifies a class of event. Callers define their own small
// integer constants per event kind, or call EventQueue.RegisterType to get
// a name-ordered one; flush order is always driven by name (see nameOf),
// not by the raw integer value, so callers that never register a name
// still get a total order over their constants' decimal representations.
type EventType uint32

// eventWildcard is the registration key for handlers that receive every
// event type, dispatched after that type's specific handlers.
const eventWildcard EventType = 1<<32 - 1

// Event is one queued occurrence: a type tag plus an opaque payload.
type Event struct {
	Type    EventType
	Payload any
}

// EventHandler receives a flushed event.
type EventHandler func(w *World, ev Event)

type handlerReg struct {
	priority int
	seq      int
	fn       EventHandler
}

// EventQueue buffers emitted events per type and dispatches them to
// registered handlers on Flush, in a fixed deterministic order: event
// types ascending, FIFO within a type, and per-event handlers ordered by
// priority ascending then registration order.
type EventQueue struct {
	queues      map[EventType][]Event
	typeOrder   []EventType
	handlers    map[EventType][]handlerReg
	names       map[EventType]string
	nextType    EventType
	regSeq      int
	flushing    bool
	totalQueued int
}

func newEventQueue() *EventQueue {
	return &EventQueue{
		queues:   make(map[EventType][]Event),
		handlers: make(map[EventType][]handlerReg),
		names:    make(map[EventType]string),
		nextType: 1,
	}
}

// RegisterType assigns a fresh EventType for name and remembers the
// association, so Flush's total order is driven by name rather than by
// whatever integer happens to get assigned.
func (q *EventQueue) RegisterType(name string) EventType {
	t := q.nextType
	q.nextType++
	q.names[t] = name
	return t
}

// nameOf returns t's registered name, or its decimal value if it was never
// registered through RegisterType (callers using raw int constants still
// get a deterministic, if arbitrary, total order).
func (q *EventQueue) nameOf(t EventType) string {
	if name, ok := q.names[t]; ok {
		return name
	}
	return fmt.Sprintf("%020d", uint32(t))
}

// On registers fn to receive events of type t, at the given priority
// (lower runs first). Handlers registered for the same type and priority
// run in registration order.
func (q *EventQueue) On(t EventType, priority int, fn EventHandler) {
	q.regSeq++
	q.handlers[t] = append(q.handlers[t], handlerReg{priority: priority, seq: q.regSeq, fn: fn})
}

// OnAny registers fn to receive every event type, dispatched after that
// type's specific handlers.
func (q *EventQueue) OnAny(priority int, fn EventHandler) {
	q.On(eventWildcard, priority, fn)
}

// Emit appends an event to its type's queue.
func (q *EventQueue) Emit(t EventType, payload any) {
	if _, seen := q.queues[t]; !seen {
		q.typeOrder = append(q.typeOrder, t)
	}
	q.queues[t] = append(q.queues[t], Event{Type: t, Payload: payload})
	q.totalQueued++
}

// Peek returns a copy of the currently queued events for t without
// draining them.
func (q *EventQueue) Peek(t EventType) []Event {
	return append([]Event(nil), q.queues[t]...)
}

// Drain removes and returns every queued event of type t.
func (q *EventQueue) Drain(t EventType) []Event {
	events := q.queues[t]
	delete(q.queues, t)
	return events
}

// Clear discards every queued event of type t without dispatching.
func (q *EventQueue) Clear(t EventType) {
	delete(q.queues, t)
}

// ClearAll discards every queued event of every type.
func (q *EventQueue) ClearAll() {
	q.queues = make(map[EventType][]Event)
	q.typeOrder = nil
	q.totalQueued = 0
}

// Count returns the number of events currently queued for t.
func (q *EventQueue) Count(t EventType) int {
	return len(q.queues[t])
}

// Flush dispatches every queued event to its registered handlers, in
// ascending type order, FIFO within a type, and clears the queues
// afterward. Calling Flush re-entrantly (from inside a handler) returns
// ReentrantFlushError instead of corrupting dispatch order.
func (q *EventQueue) Flush(w *World) error {
	if q.flushing {
		return ReentrantFlushError{}
	}
	q.flushing = true
	defer func() { q.flushing = false }()

	types := append([]EventType(nil), q.typeOrder...)
	sort.Slice(types, func(i, j int) bool { return q.nameOf(types[i]) < q.nameOf(types[j]) })

	for _, t := range types {
		events := q.queues[t]
		specific := append([]handlerReg(nil), q.handlers[t]...)
		wildcard := append([]handlerReg(nil), q.handlers[eventWildcard]...)
		sortHandlers(specific)
		sortHandlers(wildcard)
		for _, ev := range events {
			for _, h := range specific {
				h.fn(w, ev)
			}
			for _, h := range wildcard {
				h.fn(w, ev)
			}
		}
	}
	q.queues = make(map[EventType][]Event)
	q.typeOrder = nil
	q.totalQueued = 0
	return nil
}

func sortHandlers(hs []handlerReg) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].priority != hs[j].priority {
			return hs[i].priority < hs[j].priority
		}
		return hs[i].seq < hs[j].seq
	})
}
